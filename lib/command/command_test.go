package command

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/db/engines/rowan"
	dbtesting "github.com/lodisdb/lodis/lib/db/testing"
	"github.com/lodisdb/lodis/lib/store"
)

// newTestExecutor builds an executor over a 16-database store backed by
// rowan keyspaces that share one simulated clock.
func newTestExecutor(t *testing.T) (*Executor, *store.Session, *dbtesting.SimClock) {
	t.Helper()

	clock := dbtesting.NewSimClock()
	s := store.New(func() db.Keyspace {
		return rowan.New(&rowan.Options{Clock: clock.Now})
	}, store.DefaultNumDatabases)
	t.Cleanup(func() { s.Close() })

	return NewExecutor(s), s.NewSession(), clock
}

// line builds a CmdLine from string parts
func line(parts ...string) CmdLine {
	cmdLine := make(CmdLine, len(parts))
	for i, p := range parts {
		cmdLine[i] = []byte(p)
	}
	return cmdLine
}

// mustExecute runs a command that is expected to succeed
func mustExecute(t *testing.T, ex *Executor, sess *store.Session, parts ...string) Result {
	t.Helper()
	result, err := ex.Execute(sess, line(parts...))
	require.NoError(t, err, "command %v", parts)
	return result
}

func TestSetGet(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	result := mustExecute(t, ex, sess, "SET", "greeting", "hello")
	assert.IsType(t, &OkResult{}, result)

	result = mustExecute(t, ex, sess, "GET", "greeting")
	require.IsType(t, &BulkResult{}, result)
	assert.Equal(t, []byte("hello"), result.(*BulkResult).Value)

	result = mustExecute(t, ex, sess, "GET", "missing")
	assert.IsType(t, &NullResult{}, result)
}

func TestSetWithTTL(t *testing.T) {
	ex, sess, clock := newTestExecutor(t)

	mustExecute(t, ex, sess, "SET", "transient", "v", "10")

	result := mustExecute(t, ex, sess, "TTL", "transient")
	assert.Equal(t, int64(10), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "EXISTS", "transient")
	assert.Equal(t, int64(1), result.(*IntResult).Value)

	clock.Advance(11 * time.Second)

	result = mustExecute(t, ex, sess, "GET", "transient")
	assert.IsType(t, &NullResult{}, result)
	result = mustExecute(t, ex, sess, "EXISTS", "transient")
	assert.Equal(t, int64(0), result.(*IntResult).Value)

	// malformed and non-positive TTLs are rejected up front
	_, err := ex.Execute(sess, line("SET", "k", "v", "soon"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))
	_, err = ex.Execute(sess, line("SET", "k", "v", "0"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))
}

func TestDelExists(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	mustExecute(t, ex, sess, "SET", "a", "1")
	mustExecute(t, ex, sess, "SET", "b", "2")

	result := mustExecute(t, ex, sess, "EXISTS", "a", "b", "c")
	assert.Equal(t, int64(2), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "DEL", "a", "c")
	assert.Equal(t, int64(1), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "EXISTS", "a")
	assert.Equal(t, int64(0), result.(*IntResult).Value)

	// DELETE is an alias for embedded callers
	result = mustExecute(t, ex, sess, "DELETE", "b")
	assert.Equal(t, int64(1), result.(*IntResult).Value)
}

func TestIncr(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	// fresh key yields 1; repeating it n times yields n
	for i := 1; i <= 5; i++ {
		result := mustExecute(t, ex, sess, "INCR", "counter")
		assert.Equal(t, int64(i), result.(*IntResult).Value)
	}

	result := mustExecute(t, ex, sess, "INCR", "counter", "10")
	assert.Equal(t, int64(15), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "INCRBY", "counter", "-5")
	assert.Equal(t, int64(10), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "DECR", "counter")
	assert.Equal(t, int64(9), result.(*IntResult).Value)

	// INCR on a non-numeric payload is a type mismatch and leaves the
	// stored value unchanged
	mustExecute(t, ex, sess, "SET", "text", "abc")
	_, err := ex.Execute(sess, line("INCR", "text"))
	assert.Equal(t, store.RetCTypeMismatch, store.CodeOf(err))
	result = mustExecute(t, ex, sess, "GET", "text")
	assert.Equal(t, []byte("abc"), result.(*BulkResult).Value)

	// malformed delta
	_, err = ex.Execute(sess, line("INCRBY", "counter", "ten"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))
}

func TestExpireTTL(t *testing.T) {
	ex, sess, clock := newTestExecutor(t)

	// EXPIRE on a missing key returns 0, it does not error
	result := mustExecute(t, ex, sess, "EXPIRE", "missing", "10")
	assert.Equal(t, int64(0), result.(*IntResult).Value)

	// TTL three-way result
	result = mustExecute(t, ex, sess, "TTL", "missing")
	assert.Equal(t, int64(-2), result.(*IntResult).Value)

	mustExecute(t, ex, sess, "SET", "k", "v")
	result = mustExecute(t, ex, sess, "TTL", "k")
	assert.Equal(t, int64(-1), result.(*IntResult).Value)

	result = mustExecute(t, ex, sess, "EXPIRE", "k", "30")
	assert.Equal(t, int64(1), result.(*IntResult).Value)
	result = mustExecute(t, ex, sess, "TTL", "k")
	assert.Equal(t, int64(30), result.(*IntResult).Value)

	clock.Advance(10 * time.Second)
	result = mustExecute(t, ex, sess, "TTL", "k")
	assert.Equal(t, int64(20), result.(*IntResult).Value)
}

func TestSetIncrExpireScenario(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	mustExecute(t, ex, sess, "SET", "a", "1")

	result := mustExecute(t, ex, sess, "INCR", "a")
	assert.Equal(t, int64(2), result.(*IntResult).Value)

	// non-positive TTL expires immediately
	mustExecute(t, ex, sess, "EXPIRE", "a", "0")

	result = mustExecute(t, ex, sess, "GET", "a")
	assert.IsType(t, &NullResult{}, result)
	result = mustExecute(t, ex, sess, "EXISTS", "a")
	assert.Equal(t, int64(0), result.(*IntResult).Value)
}

func TestKeys(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	mustExecute(t, ex, sess, "SET", "user:1", "a")
	mustExecute(t, ex, sess, "SET", "user:2", "b")
	mustExecute(t, ex, sess, "SET", "order:1", "c")

	result := mustExecute(t, ex, sess, "KEYS", "user:*")
	keys := result.(*MultiBulkResult).Values
	assert.Len(t, keys, 2)
	for _, k := range keys {
		assert.Contains(t, []string{"user:1", "user:2"}, string(k))
	}

	_, err := ex.Execute(sess, line("KEYS", "[oops"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))
}

func TestSelect(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	// out-of-range index fails and leaves the session's database unchanged
	mustExecute(t, ex, sess, "SET", "where", "db0")
	_, err := ex.Execute(sess, line("SELECT", "17"))
	assert.Equal(t, store.RetCOutOfRange, store.CodeOf(err))
	assert.Equal(t, 0, sess.Index())

	_, err = ex.Execute(sess, line("SELECT", "-1"))
	assert.Equal(t, store.RetCOutOfRange, store.CodeOf(err))
	_, err = ex.Execute(sess, line("SELECT", "one"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))

	result := mustExecute(t, ex, sess, "GET", "where")
	assert.Equal(t, []byte("db0"), result.(*BulkResult).Value)

	// databases are isolated
	mustExecute(t, ex, sess, "SELECT", "1")
	assert.Equal(t, 1, sess.Index())
	result = mustExecute(t, ex, sess, "GET", "where")
	assert.IsType(t, &NullResult{}, result)

	// SELECT affects only the issuing session
	other := ex.Store().NewSession()
	result = mustExecute(t, ex, other, "GET", "where")
	assert.Equal(t, []byte("db0"), result.(*BulkResult).Value)
}

func TestFlushDBIsolation(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	// populate databases 0, 1 and 2
	for i := 0; i < 3; i++ {
		mustExecute(t, ex, sess, "SELECT", fmt.Sprintf("%d", i))
		mustExecute(t, ex, sess, "SET", "key", "value")
	}

	// flushing database 1 leaves the others alone
	mustExecute(t, ex, sess, "SELECT", "1")
	mustExecute(t, ex, sess, "FLUSHDB")

	result := mustExecute(t, ex, sess, "KEYS", "*")
	assert.Empty(t, result.(*MultiBulkResult).Values)

	for _, i := range []string{"0", "2"} {
		mustExecute(t, ex, sess, "SELECT", i)
		result = mustExecute(t, ex, sess, "KEYS", "*")
		assert.Len(t, result.(*MultiBulkResult).Values, 1, "database %s", i)
	}
}

func TestFlushAll(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	mustExecute(t, ex, sess, "SET", "a", "1")
	mustExecute(t, ex, sess, "SELECT", "3")
	mustExecute(t, ex, sess, "SET", "b", "2")

	mustExecute(t, ex, sess, "FLUSHALL")

	for _, i := range []string{"0", "3"} {
		mustExecute(t, ex, sess, "SELECT", i)
		result := mustExecute(t, ex, sess, "KEYS", "*")
		assert.Empty(t, result.(*MultiBulkResult).Values, "database %s", i)
	}
}

func TestDBSize(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	result := mustExecute(t, ex, sess, "DBSIZE")
	assert.Equal(t, int64(0), result.(*IntResult).Value)

	mustExecute(t, ex, sess, "SET", "a", "1")
	mustExecute(t, ex, sess, "SET", "b", "2")

	result = mustExecute(t, ex, sess, "DBSIZE")
	assert.Equal(t, int64(2), result.(*IntResult).Value)
}

func TestPing(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	result := mustExecute(t, ex, sess, "PING")
	assert.Equal(t, "PONG", result.(*StatusResult).Status)

	result = mustExecute(t, ex, sess, "PING", "hello")
	assert.Equal(t, "hello", result.(*StatusResult).Status)
}

func TestDispatchErrors(t *testing.T) {
	ex, sess, _ := newTestExecutor(t)

	_, err := ex.Execute(sess, nil)
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))

	_, err = ex.Execute(sess, line("NOPE", "arg"))
	assert.Equal(t, store.RetCUnknownCommand, store.CodeOf(err))

	_, err = ex.Execute(sess, line("GET"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))

	_, err = ex.Execute(sess, line("GET", "a", "b"))
	assert.Equal(t, store.RetCInvalidArgument, store.CodeOf(err))

	// command names are case-insensitive
	mustExecute(t, ex, sess, "set", "k", "v")
	result := mustExecute(t, ex, sess, "get", "k")
	assert.Equal(t, []byte("v"), result.(*BulkResult).Value)
}
