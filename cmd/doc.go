// Package cmd implements the command-line interface for the Lodis in-memory
// key-value store. It provides a hierarchical command structure with an
// interactive shell and a benchmarking harness.
//
// The package is organized into several subpackages:
//
//   - repl: Interactive shell speaking the store's command dialect
//   - bench: Performance testing suites for the embedded store
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See lodis -help for a list of all commands.
package cmd
