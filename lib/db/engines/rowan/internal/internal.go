package internal

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Entry Type (value cell with expiration metadata)
// --------------------------------------------------------------------------

// Entry stores one value together with its optional expiration instant.
type Entry struct {
	Value     []byte // Stored payload
	ExpiresAt int64  // Absolute expiration instant in unix nanos (0 = no TTL)
}

// Expired reports whether the entry's deadline has passed at the given
// instant. An entry without a TTL never expires.
func (e Entry) Expired(now int64) bool {
	return e.ExpiresAt != 0 && now >= e.ExpiresAt
}

// --------------------------------------------------------------------------
// Shard Type (partition of a keyspace)
// --------------------------------------------------------------------------

// Shard represents a partition of a keyspace. All per-key read-modify-write
// operations go through Data.Compute, which serializes them per key.
type Shard struct {
	Data *xsync.MapOf[string, Entry]
}

// NewShard creates an empty shard
func NewShard() *Shard {
	return &Shard{
		Data: xsync.NewMapOf[string, Entry](),
	}
}
