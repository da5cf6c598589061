// Package testing provides shared test and benchmark suites for
// implementations of the db.Keyspace interface.
//
// The package contains:
//   - RunKeyspaceTests: a conformance suite covering the full command
//     surface, lazy-expiration semantics (driven through a simulated
//     clock), atomicity of read-modify-write operations and realistic
//     mixed usage
//   - RunKeyspaceBenchmarks: throughput benchmarks for the individual
//     operations and mixed workloads
//   - SimClock: an adjustable time source that factories can hand to an
//     engine so expiration can be tested without sleeping
//
// Engine packages are expected to call both suites from a single
// _test.go file, passing a factory for their implementation.
package testing
