// Package db defines the Keyspace interface for the key-value mappings
// that back one numbered database, along with supporting types.
//
// The package contains:
//   - Keyspace: the interface every storage engine must implement. It covers
//     the scalar command surface (Set, Get, Delete, Has, Incr, Expire, TTL,
//     Keys, Flush) with per-key atomicity and lazy expiration semantics
//   - Feature: bit flags that let callers query which operations an engine
//     supports before dispatching to it
//   - TTLState: the three-way result of a TTL query, so that "no TTL set"
//     and "key absent" stay distinguishable
//   - KeyspaceInfo: a standardized metadata snapshot for monitoring
//
// Engine implementations live in the engines/ subdirectory; the shared
// interface test and benchmark suites live in the testing/ subdirectory and
// run against any Keyspace implementation.
package db
