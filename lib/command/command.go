package command

import (
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lodisdb/lodis/lib/store"
)

// CmdLine is an alias for [][]byte and represents one command line:
// the command name followed by its arguments.
type CmdLine = [][]byte

// ExecFunc executes one registered command. args does not include the
// command name. Implementations must be atomic: on error the store state
// is exactly as it was before the call.
type ExecFunc func(ex *Executor, sess *store.Session, args [][]byte) (Result, error)

// command is one registry entry
type command struct {
	name     string
	executor ExecFunc
	// arity includes the command name; a negative arity -N means
	// "at least N arguments" (variadic commands)
	arity int

	calls  *metrics.Counter
	errors *metrics.Counter
}

// cmdTable maps lowercase command names to their registry entries.
// It is populated from init functions and read-only afterwards.
var cmdTable = make(map[string]*command)

// RegisterCommand adds a command to the registry. It must only be called
// from init functions; the registry is not synchronized.
func RegisterCommand(name string, executor ExecFunc, arity int) {
	name = strings.ToLower(name)
	cmdTable[name] = &command{
		name:     name,
		executor: executor,
		arity:    arity,
		calls:    metrics.GetOrCreateCounter(`lodis_commands_total{command="` + name + `"}`),
		errors:   metrics.GetOrCreateCounter(`lodis_command_errors_total{command="` + name + `"}`),
	}
}

// validateArity checks the argument count against a command's arity
func validateArity(arity int, cmdLine CmdLine) bool {
	argNum := len(cmdLine)
	if arity >= 0 {
		return argNum == arity
	}
	return argNum >= -arity
}

// --------------------------------------------------------------------------
// Executor
// --------------------------------------------------------------------------

// Executor dispatches command lines to keyspace operations. It is
// stateless apart from the store reference and safe for concurrent use by
// any number of sessions.
type Executor struct {
	store *store.Store
}

// NewExecutor creates an executor over the given store.
func NewExecutor(s *store.Store) *Executor {
	return &Executor{store: s}
}

// Store returns the store the executor operates on.
func (ex *Executor) Store() *store.Store {
	return ex.store
}

// Execute runs one command for the given session and returns its typed
// result or a *store.Error. The command runs to completion or fails
// synchronously; nothing is retried internally.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (ex *Executor) Execute(sess *store.Session, cmdLine CmdLine) (Result, error) {
	if len(cmdLine) == 0 {
		return nil, store.NewError(store.RetCInvalidArgument, "empty command")
	}

	cmdName := strings.ToLower(string(cmdLine[0]))
	cmd, ok := cmdTable[cmdName]
	if !ok {
		return nil, store.NewError(store.RetCUnknownCommand, "unknown command '%s'", cmdName)
	}

	if !validateArity(cmd.arity, cmdLine) {
		return nil, store.NewError(store.RetCInvalidArgument, "wrong number of arguments for '%s' command", cmdName)
	}

	cmd.calls.Inc()
	result, err := cmd.executor(ex, sess, cmdLine[1:])
	if err != nil {
		cmd.errors.Inc()
	}
	return result, err
}
