// Package store provides the database manager: a Store owning a fixed
// array of keyspaces (database 0..N-1) plus per-caller Sessions tracking
// the currently selected index.
//
// The package contains:
//   - Store: owns the keyspaces for the lifetime of the process; databases
//     are never created or destroyed at runtime, only flushed
//   - Session: a caller's persistent context; SELECT mutates only the
//     issuing session's index and is all-or-nothing
//   - Error / RetCode: the store-wide error taxonomy used by all layers
//     above the engines
//
// The engine backing each keyspace is chosen through a KeyspaceFactory,
// keeping the manager independent of any concrete implementation.
package store
