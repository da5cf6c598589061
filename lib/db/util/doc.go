// Package util provides utility components for
// keyspace implementations that satisfy the db.Keyspace interface.
//
// The package contains:
//   - functions: Seed generation and the seeded key-to-shard hash
//   - statistics: Tools for analyzing keyspace characteristics and a
//     SizeHistogram for tracking value size distribution
//
// This package is particularly useful for:
//   - Engine developers implementing the db.Keyspace interface
//   - Monitoring systems that need to track keyspace size and shard
//     distribution metrics
package util
