package store

import (
	"sync/atomic"

	"github.com/lodisdb/lodis/lib/db"
)

// DefaultNumDatabases matches the Redis default
const DefaultNumDatabases = 16

// --------------------------------------------------------------------------
// Store (the database manager)
// --------------------------------------------------------------------------

// Store owns a fixed-size array of keyspaces, indexed 0..N-1. Keyspaces
// are created once at construction and live as long as the store; they
// are never created or destroyed at runtime, only flushed.
//
// A Store is an explicit object, not a package-level singleton, so that
// multiple independent stores can coexist (and be tested) in one process.
type Store struct {
	keyspaces []db.Keyspace
}

// New creates a store with numDatabases keyspaces built by the factory.
// A numDatabases <= 0 falls back to DefaultNumDatabases.
//
// Thread-safety: This function is not thread-safe and should only be
// called once during initialization.
func New(factory KeyspaceFactory, numDatabases int) *Store {
	if numDatabases <= 0 {
		numDatabases = DefaultNumDatabases
	}

	keyspaces := make([]db.Keyspace, numDatabases)
	for i := range keyspaces {
		keyspaces[i] = factory()
	}

	return &Store{keyspaces: keyspaces}
}

// NumDatabases returns the number of keyspaces owned by the store.
func (s *Store) NumDatabases() int {
	return len(s.keyspaces)
}

// Keyspace returns the keyspace for a database index. The index must be
// valid; sessions guarantee this by validating in Select.
func (s *Store) Keyspace(index int) db.Keyspace {
	return s.keyspaces[index]
}

// FlushAll flushes every keyspace and returns the total number of removed
// entries.
func (s *Store) FlushAll() int {
	removed := 0
	for _, ks := range s.keyspaces {
		removed += ks.Flush()
	}
	return removed
}

// NewSession creates a session bound to this store, starting at database 0.
func (s *Store) NewSession() *Session {
	return &Session{store: s}
}

// Close closes all keyspaces. The first error encountered is returned,
// but every keyspace is closed regardless.
func (s *Store) Close() error {
	var firstErr error
	for _, ks := range s.keyspaces {
		if err := ks.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Session is one caller's context: it tracks which database index is
// currently selected. SELECT only ever affects the issuing session, never
// the store or other sessions.
type Session struct {
	store *Store
	index atomic.Int32
}

// Select sets the session's current database index. An index outside
// [0, N) fails with RetCOutOfRange and leaves the session unchanged;
// Select is all-or-nothing.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Session) Select(index int) error {
	if index < 0 || index >= len(s.store.keyspaces) {
		return NewError(RetCOutOfRange, "database index %d out of range [0, %d)", index, len(s.store.keyspaces))
	}
	s.index.Store(int32(index))
	return nil
}

// Index returns the session's currently selected database index.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Session) Index() int {
	return int(s.index.Load())
}

// Keyspace resolves the session's currently selected keyspace.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (s *Session) Keyspace() db.Keyspace {
	return s.store.keyspaces[s.index.Load()]
}

// Store returns the store this session is bound to.
func (s *Session) Store() *Store {
	return s.store
}
