// Package command implements the command executor: the single entry point
// that turns a command line into one atomic keyspace operation.
//
// The package contains:
//   - Executor: resolves the active keyspace through the session, validates
//     arity, dispatches by command name and normalizes every failure into
//     the store error taxonomy
//   - a command registry populated by RegisterCommand from the init
//     functions of the per-group files (strings.go, keys.go, server.go)
//   - Result: the small set of typed results a command can produce (ok,
//     status, integer, bulk, null, multi-bulk)
//
// Each executed command is one indivisible unit: either its full effect is
// applied or the store is left exactly as it was. Per-command call and
// error counters are exported through VictoriaMetrics.
package command
