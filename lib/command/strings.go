package command

import (
	"errors"
	"strconv"
	"time"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/store"
)

// Scalar string and counter commands: SET, GET, INCR, INCRBY, DECR.

// execSet stores a value, optionally with a TTL in seconds.
// SET key value [ttl-seconds]
func execSet(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	if len(args) > 3 {
		return nil, store.NewError(store.RetCInvalidArgument, "wrong number of arguments for 'set' command")
	}

	key := string(args[0])
	value := args[1]

	var ttl time.Duration
	if len(args) == 3 {
		seconds, err := strconv.ParseInt(string(args[2]), 10, 64)
		if err != nil {
			return nil, store.NewError(store.RetCInvalidArgument, "ttl is not an integer: %q", args[2])
		}
		if seconds <= 0 {
			return nil, store.NewError(store.RetCInvalidArgument, "invalid expire time in 'set' command")
		}
		ttl = time.Duration(seconds) * time.Second
	}

	sess.Keyspace().Set(key, value, ttl)
	return MakeOk(), nil
}

// execGet reads the value for a key.
// GET key
func execGet(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	value, loaded := sess.Keyspace().Get(string(args[0]))
	if !loaded {
		return MakeNull(), nil
	}
	return MakeBulk(value), nil
}

// incrBy applies delta to the integer value stored under key and
// normalizes the engine's type error into the store taxonomy.
func incrBy(sess *store.Session, key string, delta int64) (Result, error) {
	newValue, err := sess.Keyspace().Incr(key, delta)
	if err != nil {
		if errors.Is(err, db.ErrNotAnInteger) {
			return nil, store.NewError(store.RetCTypeMismatch, "value is not an integer or out of range")
		}
		return nil, store.NewError(store.RetCInternalError, "incr failed: %v", err)
	}
	return MakeInt(newValue), nil
}

// execIncr increments a counter by 1, or by an explicit delta.
// INCR key [delta]
func execIncr(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	if len(args) > 2 {
		return nil, store.NewError(store.RetCInvalidArgument, "wrong number of arguments for 'incr' command")
	}

	delta := int64(1)
	if len(args) == 2 {
		parsed, err := strconv.ParseInt(string(args[1]), 10, 64)
		if err != nil {
			return nil, store.NewError(store.RetCInvalidArgument, "delta is not an integer: %q", args[1])
		}
		delta = parsed
	}
	return incrBy(sess, string(args[0]), delta)
}

// execIncrBy increments a counter by an explicit delta.
// INCRBY key delta
func execIncrBy(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	delta, err := strconv.ParseInt(string(args[1]), 10, 64)
	if err != nil {
		return nil, store.NewError(store.RetCInvalidArgument, "delta is not an integer: %q", args[1])
	}
	return incrBy(sess, string(args[0]), delta)
}

// execDecr decrements a counter by 1.
// DECR key
func execDecr(_ *Executor, sess *store.Session, args [][]byte) (Result, error) {
	return incrBy(sess, string(args[0]), -1)
}

func init() {
	RegisterCommand("Set", execSet, -3)
	RegisterCommand("Get", execGet, 2)
	RegisterCommand("Incr", execIncr, -2)
	RegisterCommand("IncrBy", execIncrBy, 3)
	RegisterCommand("Decr", execDecr, 2)
}
