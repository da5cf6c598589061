package command

import (
	"strconv"

	"github.com/lodisdb/lodis/lib/store"
)

// Session and liveness commands: SELECT, PING.

// execSelect switches the session's current database. The change is
// all-or-nothing: an out-of-range index leaves the session untouched.
// SELECT db-index
func execSelect(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	index, err := strconv.Atoi(string(args[0]))
	if err != nil {
		return nil, store.NewError(store.RetCInvalidArgument, "database index is not an integer: %q", args[0])
	}

	if err := sess.Select(index); err != nil {
		return nil, err
	}
	return MakeOk(), nil
}

// execPing answers PONG, or echoes its single optional argument.
// PING [message]
func execPing(_ *Executor, _ *store.Session, args [][]byte) (Result, error) {
	switch len(args) {
	case 0:
		return MakeStatus("PONG"), nil
	case 1:
		return MakeStatus(string(args[0])), nil
	default:
		return nil, store.NewError(store.RetCInvalidArgument, "wrong number of arguments for 'ping' command")
	}
}

func init() {
	RegisterCommand("Select", execSelect, 2)
	RegisterCommand("Ping", execPing, -1)
}
