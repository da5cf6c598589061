package util

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
)

// --------------------------------------------------------------------------
// General Utility Functions
// --------------------------------------------------------------------------

// GenerateSeed creates a random seed for internal hash distribution
func GenerateSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// fallback, only if the system entropy source is unavailable
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// --------------------------------------------------------------------------
// Hash Functions
// --------------------------------------------------------------------------

// HashKey generates a hash value for a key with a seed.
// xxhash is used because it is nearly as fast as simpler checksums while
// keeping the distribution across shards uniform. The seed decouples the
// distribution of independent keyspace instances from each other.
func HashKey(key string, seed uint64) uint64 {
	return xxhash.Sum64String(key) ^ seed
}

// ShardIndex maps a hash to a shard slot.
// The hash is right-shifted by 7 bits to use higher-quality bits for
// distribution before the modulo.
func ShardIndex(hash uint64, numShards int) int {
	return int((hash >> 7) % uint64(numShards))
}
