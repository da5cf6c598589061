package db

import (
	"errors"
	"time"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplRowan Implementation = "rowan"
)

// Feature represents keyspace features as bit flags
type Feature uint64

const (
	FeatureSet    Feature = 1 << iota // Support for Set operations
	FeatureGet                        // Support for Get operations
	FeatureDelete                     // Support for Delete operations
	FeatureHas                        // Support for Has operations
	FeatureIncr                       // Support for Incr operations
	FeatureExpire                     // Support for Expire operations
	FeatureTTL                        // Support for TTL queries
	FeatureKeys                       // Support for Keys enumeration
	FeatureFlush                      // Support for Flush operations
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureHas:
		return "Has"
	case FeatureIncr:
		return "Incr"
	case FeatureExpire:
		return "Expire"
	case FeatureTTL:
		return "TTL"
	case FeatureKeys:
		return "Keys"
	case FeatureFlush:
		return "Flush"
	default:
		return "Unknown"
	}
}

// TTLState is the three-way result of a TTL query. A key without a TTL
// must be distinguishable from a key that does not exist at all.
type TTLState int

const (
	TTLSet     TTLState = iota // key exists and has a TTL
	TTLNone                    // key exists but has no TTL
	TTLMissing                 // key does not exist (or is expired)
)

func (s TTLState) String() string {
	switch s {
	case TTLSet:
		return "Set"
	case TTLNone:
		return "None"
	case TTLMissing:
		return "Missing"
	default:
		return "Unknown"
	}
}

// KeyspaceInfo describes a keyspace for monitoring purposes.
type KeyspaceInfo struct {
	Keys              int            `json:"keys"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrNotAnInteger is returned by Incr when the stored payload cannot be
// parsed as a base-10 signed integer.
var ErrNotAnInteger = errors.New("value is not an integer")

// --------------------------------------------------------------------------
// Keyspace Interface
// --------------------------------------------------------------------------

// Keyspace defines the interface for one database's key-value mapping.
// Every operation is atomic with respect to other operations on the same
// key: no caller ever observes a partial effect of another operation.
//
// Expiration is lazy. An entry whose deadline has passed is logically
// absent, and the operation that observes this removes it. Implementations
// must not run background expiration sweeps; the hot path stays free of
// global scans.
type Keyspace interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates an entry. An existing entry is overwritten and
	// its TTL cleared unless a new ttl > 0 is supplied. The returned bool
	// reports whether a live entry for the key existed before the call.
	Set(key string, value []byte, ttl time.Duration) (existed bool)

	// Delete removes an entry. The returned bool reports whether a live
	// entry was removed.
	Delete(key string) (removed bool)

	// Incr interprets the payload as a base-10 signed integer, adds delta
	// and stores the result. A missing key is created with initial value 0
	// before delta is applied. An existing TTL is preserved. Incr returns
	// ErrNotAnInteger (and leaves the entry untouched) if the payload is
	// not a valid integer.
	Incr(key string, delta int64) (newValue int64, err error)

	// Expire sets the entry's TTL relative to now. A ttl <= 0 expires the
	// key immediately. Returns false if the key does not exist.
	Expire(key string, ttl time.Duration) (ok bool)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for a key. The boolean reports whether a live
	// value was found. The returned slice is a copy and safe to modify.
	Get(key string) (value []byte, loaded bool)

	// Has checks whether a live entry exists for the key.
	Has(key string) (loaded bool)

	// TTL queries the remaining lifetime of a key. The duration is only
	// meaningful when the state is TTLSet.
	TTL(key string) (remaining time.Duration, state TTLState)

	// Keys returns all live keys matching the glob pattern, in no
	// particular order. This is a full scan, O(number of keys), and the
	// most expensive operation of the interface. It returns an error only
	// for a malformed pattern.
	Keys(pattern string) (keys []string, err error)

	// Len returns the number of physically stored entries. Entries that
	// are expired but not yet evicted may be included.
	Len() (n int)

	// --------------------------------------------------------------------------
	// Maintenance Operations
	// --------------------------------------------------------------------------

	// Flush removes every entry and returns the number of entries removed.
	Flush() (removed int)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the implementation supports the specified
	// feature. Multiple features can be checked at once using bitwise OR.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the keyspace.
	GetInfo() (info KeyspaceInfo)

	// Close releases any resources held by the keyspace.
	Close() (err error)
}
