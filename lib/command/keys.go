package command

import (
	"strconv"
	"time"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/store"
)

// Generic key commands: DEL, EXISTS, EXPIRE, TTL, KEYS, FLUSHDB,
// FLUSHALL, DBSIZE.

// execDel removes keys and returns the number actually removed.
// DEL key [key ...]
func execDel(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	ks := sess.Keyspace()
	removed := int64(0)
	for _, arg := range args {
		if ks.Delete(string(arg)) {
			removed++
		}
	}
	return MakeInt(removed), nil
}

// execExists counts how many of the given keys exist.
// EXISTS key [key ...]
func execExists(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	ks := sess.Keyspace()
	count := int64(0)
	for _, arg := range args {
		if ks.Has(string(arg)) {
			count++
		}
	}
	return MakeInt(count), nil
}

// execExpire sets a TTL in seconds on an existing key. Returns 1 if the
// TTL was set, 0 if the key is absent. A non-positive ttl expires the key
// immediately (it becomes absent on the very next access).
// EXPIRE key ttl-seconds
func execExpire(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	seconds, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidArgument, "ttl is not an integer: %q", args[1])
	}

	if sess.Keyspace().Expire(string(args[0]), time.Duration(seconds)*time.Second) {
		return MakeInt(1), nil
	}
	return MakeInt(0), nil
}

// execTTL reports the remaining lifetime of a key in seconds, -1 for a
// key without TTL and -2 for a missing key.
// TTL key
func execTTL(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	remaining, state := sess.Keyspace().TTL(string(args[0]))
	switch state {
	case db.TTLMissing:
		return MakeInt(-2), nil
	case db.TTLNone:
		return MakeInt(-1), nil
	default:
		// round up so a freshly set ttl reads back unchanged
		seconds := int64((remaining + time.Second - 1) / time.Second)
		return MakeInt(seconds), nil
	}
}

// execKeys returns all keys of the current database matching the glob
// pattern. This scans the whole keyspace and is priced accordingly.
// KEYS pattern
func execKeys(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	keys, err := sess.Keyspace().Keys(string(args[0]))
	if err != nil {
		return nil, store.NewError(store.RetCInvalidArgument, "invalid pattern: %v", err)
	}
	return MakeKeys(keys), nil
}

// execFlushDB removes all data of the current database only; other
// databases are untouched.
// FLUSHDB
func execFlushDB(_ *Executor, sess *store.Session, _ [][]byte) (Result, error) {
	sess.Keyspace().Flush()
	return MakeOk(), nil
}

// execFlushAll removes all data of every database.
// FLUSHALL
func execFlushAll(ex *Executor, _ *store.Session, _ [][]byte) (Result, error) {
	ex.store.FlushAll()
	return MakeOk(), nil
}

// execDBSize returns the number of keys in the current database.
// DBSIZE
func execDBSize(_ *Executor, sess *store.Session, _ [][]byte) (Result, error) {
	return MakeInt(int64(sess.Keyspace().Len())), nil
}

func init() {
	RegisterCommand("Del", execDel, -2)
	RegisterCommand("Delete", execDel, -2) // alias, embedded callers use the long form
	RegisterCommand("Exists", execExists, -2)
	RegisterCommand("Expire", execExpire, 3)
	RegisterCommand("TTL", execTTL, 2)
	RegisterCommand("Keys", execKeys, 2)
	RegisterCommand("FlushDB", execFlushDB, 1)
	RegisterCommand("FlushAll", execFlushAll, 1)
	RegisterCommand("DBSize", execDBSize, 1)
}
