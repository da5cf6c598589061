// Package rowan implements a high-throughput keyspace with lock-striped
// concurrency control and lazy, on-access expiration. It provides a
// complete implementation of the db.Keyspace interface with a focus on
// per-key atomicity and a hot path free of allocations and global scans.
//
// The package focuses on:
//   - Optimized concurrent access through sharding over lock-free maps
//   - TTL handling without any background sweeper: the operation that
//     observes a passed deadline evicts the entry
//   - Atomic read-modify-write semantics for Incr and TTL-aware reads
//   - Keyspace metrics and statistics for monitoring
//
// Key Components:
//
//   - rowanImpl: The central structure implementing db.Keyspace. It manages
//     shards and provides the public API for key-value operations. A time
//     source is injected through Options so that expiration behavior can be
//     tested against simulated clocks.
//
//   - Shard: A partition of the keyspace managing a subset of the keys.
//     Each shard wraps a concurrent map (xsync.MapOf); shards operate
//     independently to minimize contention. Keys are distributed across
//     shards with a seeded xxhash so independent keyspace instances do not
//     share a distribution.
//
//   - Entry: The stored value cell: payload bytes plus an optional absolute
//     expiration instant. An entry whose instant has passed is logically
//     absent even while physically present.
//
// Internal Mechanisms:
//
//   - Per-key atomicity: every read-modify-write path (Set, Delete, Incr,
//     Expire, TTL-aware Get/Has) runs inside the shard map's Compute, which
//     serializes all access to one key. A lazy eviction therefore cannot
//     race with a concurrent write that legitimately re-creates the key:
//     whichever runs second wins.
//
//   - Key enumeration: Keys performs a two-phase scan (collect candidates,
//     then validate-and-possibly-evict each before matching) so that the
//     evictions it performs cannot corrupt its own iteration.
package rowan
