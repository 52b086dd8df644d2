package export

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/sourcegraph/conc/iter"
	"golang.org/x/crypto/argon2"
)

// HashType represents the different hashing algorithms available.
type HashType string

const (
	// HashTypeArgon2id uses the Argon2id algorithm for hashing.
	HashTypeArgon2id HashType = "argon2id"
	// HashTypeSHA256 uses iterated salted SHA256.
	HashTypeSHA256 HashType = "sha256"
)

// HashID converts a Discord user ID to a hex hash using the given algorithm and salt.
func HashID(id uint64, salt string, hashType HashType, iterations uint32, memory uint32) string {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)

	var hash []byte

	switch hashType {
	case HashTypeArgon2id:
		hash = argon2.IDKey(idBytes, []byte(salt), iterations, memory*1024, 1, 32)
	case HashTypeSHA256:
		hash = []byte(salt)

		h := sha256.New()
		for range iterations {
			h.Reset()
			h.Write(idBytes)
			h.Write(hash)
			hash = h.Sum(nil)
		}
	}

	return hex.EncodeToString(hash)
}

// Hasher pseudonymizes user IDs, hashing each distinct ID once.
type Hasher struct {
	Salt        string
	Type        HashType
	Iterations  uint32
	Memory      uint32
	Concurrency int
}

// HashAll hashes every distinct ID concurrently and returns a lookup table.
func (h *Hasher) HashAll(ids []uint64) map[uint64]string {
	seen := make(map[uint64]struct{}, len(ids))
	unique := make([]uint64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	mapper := iter.Mapper[uint64, string]{MaxGoroutines: max(h.Concurrency, 1)}
	hashes := mapper.Map(unique, func(id *uint64) string {
		return HashID(*id, h.Salt, h.Type, h.Iterations, h.Memory)
	})

	result := make(map[uint64]string, len(unique))
	for i, id := range unique {
		result[id] = hashes[i]
	}

	return result
}
