package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "modreport:classify:"

// Cache remembers results in Redis keyed by a hash of the message text.
type Cache struct {
	next   Classifier
	scope  string
	client rueidis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache wraps next. scope separates results of different backend sets.
func NewCache(next Classifier, scope string, client rueidis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		next:   next,
		scope:  scope,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Classify returns a cached result when present. Cache failures fall through
// to the wrapped classifier.
func (c *Cache) Classify(ctx context.Context, text string) (string, error) {
	key := c.key(text)

	cached, err := c.client.Do(ctx, c.client.B().Get().Key(key).Build()).ToString()
	if err == nil {
		return cached, nil
	}
	if !rueidis.IsRedisNil(err) {
		c.logger.Warn("Failed to read classifier cache", zap.Error(err))
	}

	result, err := c.next.Classify(ctx, text)
	if err != nil {
		return "", err
	}

	var cmd rueidis.Completed
	if c.ttl > 0 {
		cmd = c.client.B().Set().Key(key).Value(result).Ex(c.ttl).Build()
	} else {
		cmd = c.client.B().Set().Key(key).Value(result).Build()
	}

	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn("Failed to write classifier cache", zap.Error(err))
	}

	return result, nil
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(c.scope + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
