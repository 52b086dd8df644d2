package dispatcher

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/puzpuzpuz/xsync/v3"
)

// keyLock is a mutex shared by every holder and waiter of one key.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes work on the same key while other keys run freely.
// Entries are dropped once nobody holds or waits on them.
type keyedMutex struct {
	locks *xsync.MapOf[snowflake.ID, *keyLock]
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: xsync.NewMapOf[snowflake.ID, *keyLock]()}
}

// lock blocks until key is free and returns the function releasing it.
func (k *keyedMutex) lock(key snowflake.ID) func() {
	l, _ := k.locks.Compute(key, func(l *keyLock, loaded bool) (*keyLock, bool) {
		if !loaded {
			l = &keyLock{}
		}
		l.refs++
		return l, false
	})

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.locks.Compute(key, func(l *keyLock, _ bool) (*keyLock, bool) {
			l.refs--
			return l, l.refs == 0
		})
	}
}

// size returns the number of keys currently held or awaited.
func (k *keyedMutex) size() int {
	return k.locks.Size()
}
