package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodisdb/lodis/lib/db"
	"github.com/lodisdb/lodis/lib/db/engines/rowan"
)

func newTestStore(t *testing.T, numDatabases int) *Store {
	t.Helper()
	s := New(func() db.Keyspace { return rowan.New(nil) }, numDatabases)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewDefaults(t *testing.T) {
	s := newTestStore(t, 0)
	assert.Equal(t, DefaultNumDatabases, s.NumDatabases())

	s = newTestStore(t, 4)
	assert.Equal(t, 4, s.NumDatabases())
}

func TestSessionSelect(t *testing.T) {
	s := newTestStore(t, 4)
	sess := s.NewSession()

	// fresh sessions start at database 0
	assert.Equal(t, 0, sess.Index())

	require.NoError(t, sess.Select(3))
	assert.Equal(t, 3, sess.Index())

	// out-of-range selects fail and leave the index untouched
	err := sess.Select(4)
	require.Error(t, err)
	assert.Equal(t, RetCOutOfRange, CodeOf(err))
	assert.Equal(t, 3, sess.Index())

	err = sess.Select(-1)
	require.Error(t, err)
	assert.Equal(t, RetCOutOfRange, CodeOf(err))
	assert.Equal(t, 3, sess.Index())
}

func TestSessionIsolation(t *testing.T) {
	s := newTestStore(t, 2)

	a := s.NewSession()
	b := s.NewSession()

	require.NoError(t, a.Select(1))
	assert.Equal(t, 1, a.Index())
	assert.Equal(t, 0, b.Index(), "SELECT must not leak into other sessions")

	// same index resolves to the same keyspace instance
	require.NoError(t, b.Select(1))
	a.Keyspace().Set("shared", []byte("v"), 0)
	_, ok := b.Keyspace().Get("shared")
	assert.True(t, ok)
}

func TestDatabaseIsolation(t *testing.T) {
	s := newTestStore(t, 2)

	s.Keyspace(0).Set("key", []byte("zero"), 0)
	s.Keyspace(1).Set("key", []byte("one"), 0)

	v, ok := s.Keyspace(0).Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("zero"), v)

	v, ok = s.Keyspace(1).Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("one"), v)
}

func TestFlushAll(t *testing.T) {
	s := newTestStore(t, 3)

	for i := 0; i < s.NumDatabases(); i++ {
		s.Keyspace(i).Set("a", []byte("v"), 0)
		s.Keyspace(i).Set("b", []byte("v"), 0)
	}

	assert.Equal(t, 6, s.FlushAll())
	for i := 0; i < s.NumDatabases(); i++ {
		assert.Equal(t, 0, s.Keyspace(i).Len())
	}

	// flushing an empty store removes nothing
	assert.Equal(t, 0, s.FlushAll())
}

func TestConcurrentSelect(t *testing.T) {
	s := newTestStore(t, 8)
	sess := s.NewSession()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, sess.Select(index))
				got := sess.Index()
				assert.GreaterOrEqual(t, got, 0)
				assert.Less(t, got, 8)
			}
		}(w)
	}
	wg.Wait()
}

func TestErrorCode(t *testing.T) {
	err := NewError(RetCNotFound, "key %q not found", "x")
	assert.Equal(t, RetCNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), `key "x" not found`)

	// plain errors map to the internal error code
	assert.Equal(t, RetCInternalError, CodeOf(assert.AnError))
	assert.Equal(t, RetCSuccess, CodeOf(nil))
}
