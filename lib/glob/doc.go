// Package glob implements Redis-style glob pattern matching for key
// enumeration (the KEYS command).
//
// Supported syntax:
//   - `*` matches any run of bytes, including the empty run
//   - `?` matches exactly one byte
//   - `[...]` matches one byte out of a class; classes support literal
//     ranges (`[a-c]`) and negation (`[^a]`)
//   - `\x` matches the literal byte x
//
// Matching is byte-wise, case-sensitive and anchored: the whole key must
// match the whole pattern. Patterns are compiled once with Compile and can
// then be matched against any number of keys. A compiled Pattern is
// immutable and safe for concurrent use.
package glob
