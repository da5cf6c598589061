package rowan

import (
	"runtime"
	"strconv"
	"time"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/db/engines/rowan/internal"
	"github.com/lodisdb/lodis/lib/db/util"
	"github.com/lodisdb/lodis/lib/glob"
)

// --------------------------------------------------------------------------
// Core Rowan keyspace structure
// --------------------------------------------------------------------------

// rowanImpl implements a high-throughput keyspace with sharded data.
// Expiration is purely lazy: the operation that observes a passed deadline
// evicts the entry, there is no background sweeper.
type rowanImpl struct {
	numShards int               // Number of shards
	seed      uint64            // Seed for the shard hash
	shards    []*internal.Shard // Array of shards
	clock     func() time.Time  // Time source (injectable for tests)
}

// Options configures the rowanImpl behavior during initialization
type Options struct {
	NumShards int              // Number of shards (0 = auto)
	Clock     func() time.Time // Time source (nil = time.Now)
}

// DefaultOptions returns the default rowanImpl options
func DefaultOptions() *Options {
	return &Options{
		NumShards: runtime.NumCPU(), // Auto-determine based on CPU count
		Clock:     time.Now,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// New creates a new rowan keyspace with the specified options (optional).
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func New(opts *Options) db.Keyspace {
	if opts == nil {
		opts = DefaultOptions()
	}

	numShards := opts.NumShards
	if numShards <= 0 {
		numShards = runtime.NumCPU()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	shards := make([]*internal.Shard, numShards)
	for i := 0; i < numShards; i++ {
		shards[i] = internal.NewShard()
	}

	return &rowanImpl{
		numShards: numShards,
		seed:      util.GenerateSeed(),
		shards:    shards,
		clock:     clock,
	}
}

// shardFor returns the shard responsible for a key
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) shardFor(key string) *internal.Shard {
	return r.shards[util.ShardIndex(util.HashKey(key, r.seed), r.numShards)]
}

// now returns the current instant in unix nanos
func (r *rowanImpl) now() int64 {
	return r.clock().UnixNano()
}

// deadline converts a relative ttl into an absolute instant (0 = no TTL).
// A non-positive ttl yields a deadline that has already passed, so the key
// becomes absent on the very next access.
func (r *rowanImpl) deadline(now int64, ttl time.Duration) int64 {
	if ttl == 0 {
		return 0
	}
	return now + ttl.Nanoseconds()
}

// --------------------------------------------------------------------------
// Core Keyspace Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry. An existing entry is always overwritten
// and its prior TTL cleared unless a new ttl > 0 is supplied.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Set(key string, value []byte, ttl time.Duration) bool {
	now := r.now()

	// Copy value to prevent memory corruption through caller-held slices
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	entry := internal.Entry{
		Value:     valueCopy,
		ExpiresAt: r.deadline(now, ttl),
	}

	var existed bool
	r.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		existed = loaded && !old.Expired(now)
		return entry, false
	})

	return existed
}

// Delete removes an entry. An entry that is physically present but expired
// is evicted and reported as not removed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Delete(key string) bool {
	now := r.now()

	var removed bool
	r.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true // delete to avoid creating an empty entry
		}
		removed = !old.Expired(now)
		return old, true
	})

	return removed
}

// Incr atomically adds delta to the integer payload stored under key.
// A missing (or expired) key starts at 0 without a TTL; an existing TTL is
// preserved across the increment. The parse and the write happen inside a
// single Compute call, so no concurrent caller can observe the read value
// without its corresponding write.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Incr(key string, delta int64) (int64, error) {
	now := r.now()

	var (
		newValue int64
		retErr   error
	)
	r.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded || old.Expired(now) {
			newValue = delta
			return internal.Entry{Value: strconv.AppendInt(nil, delta, 10)}, false
		}

		parsed, err := strconv.ParseInt(string(old.Value), 10, 64)
		if err != nil {
			retErr = db.ErrNotAnInteger
			return old, false // leave the stored value untouched
		}

		newValue = parsed + delta
		return internal.Entry{
			Value:     strconv.AppendInt(nil, newValue, 10),
			ExpiresAt: old.ExpiresAt,
		}, false
	})

	if retErr != nil {
		return 0, retErr
	}
	return newValue, nil
}

// Expire sets the entry's TTL relative to now. Returns false if the key is
// absent (including expired-but-not-yet-evicted entries, which are evicted
// on this observation).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Expire(key string, ttl time.Duration) bool {
	now := r.now()

	var ok bool
	r.shardFor(key).Data.Compute(key, func(old internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return old, true
		}
		if old.Expired(now) {
			return old, true // lazy eviction
		}

		ok = true
		if ttl <= 0 {
			// non-positive TTL expires the key immediately
			old.ExpiresAt = now
		} else {
			old.ExpiresAt = now + ttl.Nanoseconds()
		}
		return old, false
	})

	return ok
}

// --------------------------------------------------------------------------
// Core Keyspace Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key. The returned value is a copy of the
// stored data and therefore safe to use and modify. An expired entry is
// evicted on this observation and reported as absent.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Get(key string) ([]byte, bool) {
	now := r.now()

	var (
		data []byte
		ok   bool
	)
	r.shardFor(key).Data.Compute(key, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return e, true
		}
		if e.Expired(now) {
			return e, true // lazy eviction
		}

		ok = true
		data = make([]byte, len(e.Value))
		copy(data, e.Value)
		return e, false
	})

	return data, ok
}

// Has checks if a live entry exists for the key. Like Get it evicts an
// expired entry on observation, but skips the value copy.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Has(key string) bool {
	now := r.now()

	var ok bool
	r.shardFor(key).Data.Compute(key, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return e, true
		}
		if e.Expired(now) {
			return e, true
		}
		ok = true
		return e, false
	})

	return ok
}

// TTL queries the remaining lifetime of a key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) TTL(key string) (time.Duration, db.TTLState) {
	now := r.now()

	var (
		remaining time.Duration
		state     = db.TTLMissing
	)
	r.shardFor(key).Data.Compute(key, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
		if !loaded {
			return e, true
		}
		if e.Expired(now) {
			return e, true
		}

		if e.ExpiresAt == 0 {
			state = db.TTLNone
		} else {
			state = db.TTLSet
			remaining = time.Duration(e.ExpiresAt - now)
		}
		return e, false
	})

	return remaining, state
}

// Keys returns all live keys matching the glob pattern.
//
// The scan is two-phase: first all candidate keys are collected per shard,
// then every candidate is re-validated (and evicted if its deadline passed
// in the meantime) before the pattern is applied. This keeps the iteration
// safe against the concurrent removals the scan itself performs.
//
// This is the most expensive operation of the keyspace, O(number of keys).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Keys(pattern string) ([]string, error) {
	p, err := glob.Compile(pattern)
	if err != nil {
		return nil, err
	}

	now := r.now()
	result := make([]string, 0)

	for _, shard := range r.shards {
		// phase 1: snapshot the candidate keys of this shard
		candidates := make([]string, 0, shard.Data.Size())
		shard.Data.Range(func(key string, _ internal.Entry) bool {
			candidates = append(candidates, key)
			return true
		})

		// phase 2: validate, lazily evict, then match
		for _, key := range candidates {
			e, ok := shard.Data.Load(key)
			if !ok {
				continue
			}
			if e.Expired(now) {
				// double-check under Compute, a concurrent Set may have
				// legitimately re-created the key since the Load
				shard.Data.Compute(key, func(e internal.Entry, loaded bool) (internal.Entry, bool) {
					return e, !loaded || e.Expired(now)
				})
				continue
			}
			if p.Match(key) {
				result = append(result, key)
			}
		}
	}

	return result, nil
}

// Len returns the number of physically stored entries. Expired entries
// that have not been observed (and therefore not evicted) yet are counted.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (r *rowanImpl) Len() int {
	n := 0
	for _, shard := range r.shards {
		n += shard.Data.Size()
	}
	return n
}

// --------------------------------------------------------------------------
// Maintenance Operations
// --------------------------------------------------------------------------

// Flush removes every entry from the keyspace and returns the number of
// entries removed.
//
// Thread-safety: This method is thread-safe, but entries written
// concurrently with the flush may survive it.
func (r *rowanImpl) Flush() int {
	removed := 0
	for _, shard := range r.shards {
		removed += shard.Data.Size()
		shard.Data.Clear()
	}
	return removed
}

// --------------------------------------------------------------------------
// Keyspace Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the keyspace
func (r *rowanImpl) GetInfo() db.KeyspaceInfo {
	now := r.now()

	// sample value sizes per shard instead of scanning everything
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100

	samplesCount := 0
	expiredBacklog := 0
	shardSizes := make([]float64, len(r.shards))

	for i, shard := range r.shards {
		count := 0
		shard.Data.Range(func(_ string, entry internal.Entry) bool {
			histogram.AddSample(len(entry.Value))
			if entry.Expired(now) {
				expiredBacklog++
			}
			count++
			return count < samplesPerShard
		})
		samplesCount += count
		shardSizes[i] = float64(shard.Data.Size())
	}

	// weighted size estimate (60% median, 40% average)
	entryOverhead := 24 // ExpiresAt plus slice header
	medianSize := histogram.MedianEstimate() + entryOverhead
	avgSize := histogram.AverageSize() + entryOverhead
	sizeBytes := (medianSize*60 + avgSize*40) / 100

	expiredRatio := 0.0
	if samplesCount > 0 {
		expiredRatio = float64(expiredBacklog) / float64(samplesCount)
	}

	meta := &struct {
		ShardCount        int                    `json:"shard_count"`
		ShardDistribution util.DistributionStats `json:"shard_distribution"`
		ExpiredBacklog    float64                `json:"expired_backlog"`
		Info              string                 `json:"info"`
	}{
		ShardCount:        len(r.shards),
		ShardDistribution: util.NewDistributionStats(shardSizes),
		ExpiredBacklog:    expiredRatio,
		Info:              "All values (including SizeBytes) are estimates and may vary depending on the keyspace state.",
	}

	return db.KeyspaceInfo{
		Keys:      r.Len(),
		SizeBytes: sizeBytes,
		DbType:    db.ImplRowan,
		SupportedFeatures: []db.Feature{
			db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureHas,
			db.FeatureIncr, db.FeatureExpire, db.FeatureTTL,
			db.FeatureKeys, db.FeatureFlush,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific
// Keyspace feature
func (r *rowanImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureHas |
		db.FeatureIncr |
		db.FeatureExpire |
		db.FeatureTTL |
		db.FeatureKeys |
		db.FeatureFlush
	return supportedFeatures&feature == feature
}

// Close is a no-op, rowan holds no background resources
func (r *rowanImpl) Close() error {
	return nil
}
