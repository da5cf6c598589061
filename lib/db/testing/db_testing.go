package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lodisdb/lodis/lib/db"
)

// KeyspaceFactory creates a new instance of a db.Keyspace implementation
// using the provided time source.
type KeyspaceFactory func(clock func() time.Time) db.Keyspace

// --------------------------------------------------------------------------
// Simulated clock
// --------------------------------------------------------------------------

// SimClock is an adjustable time source for expiration tests. It never
// advances on its own.
type SimClock struct {
	nanos atomic.Int64
}

// NewSimClock creates a clock starting at an arbitrary fixed instant
func NewSimClock() *SimClock {
	c := &SimClock{}
	c.nanos.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

// Now returns the clock's current instant.
//
// Thread-safety: This method is safe for concurrent use
func (c *SimClock) Now() time.Time {
	return time.Unix(0, c.nanos.Load())
}

// Advance moves the clock forward by d.
//
// Thread-safety: This method is safe for concurrent use
func (c *SimClock) Advance(d time.Duration) {
	c.nanos.Add(d.Nanoseconds())
}

// --------------------------------------------------------------------------
// Test suite
// --------------------------------------------------------------------------

// RunKeyspaceTests runs a comprehensive conformance suite for a
// db.Keyspace implementation.
func RunKeyspaceTests(t *testing.T, name string, factory KeyspaceFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory)
		})

		t.Run("SetClearsTTL", func(t *testing.T) {
			testSetClearsTTL(t, factory)
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory)
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory)
		})

		t.Run("Incr", func(t *testing.T) {
			testIncr(t, factory)
		})

		t.Run("IncrTypeMismatch", func(t *testing.T) {
			testIncrTypeMismatch(t, factory)
		})

		t.Run("Expire&TTL", func(t *testing.T) {
			testExpireTTL(t, factory)
		})

		t.Run("KeyExpiry", func(t *testing.T) {
			testKeyExpiry(t, factory)
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory)
		})

		t.Run("Flush", func(t *testing.T) {
			testFlush(t, factory)
		})

		t.Run("ConcurrentIncr", func(t *testing.T) {
			testConcurrentIncr(t, factory)
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the keyspace supports the specified feature.
// Skips the test if it is not supported.
func requireFeature(t testing.TB, keyspace db.Keyspace, feature db.Feature) {
	if !keyspace.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if existed := keyspace.Set(testKey, testValue1, 0); existed {
		t.Errorf("Expected Set on a fresh key to report existed=false")
	}

	result, exists := keyspace.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// overwrite replaces, it does not merge
	if existed := keyspace.Set(testKey, testValue2, 0); !existed {
		t.Errorf("Expected Set on an existing key to report existed=true")
	}

	result, exists = keyspace.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	if _, exists = keyspace.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// Get must return a copy, not a reference to the stored value
	retrievedValue, _ := keyspace.Get(testKey)
	retrievedValue[0] = 'X'
	originalValue, _ := keyspace.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testSetClearsTTL(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureTTL)

	keyspace.Set("k", []byte("v"), 10*time.Second)
	if _, state := keyspace.TTL("k"); state != db.TTLSet {
		t.Errorf("Expected TTLSet after Set with ttl, got %v", state)
	}

	// plain overwrite clears the TTL (no KEEPTTL semantics)
	keyspace.Set("k", []byte("v2"), 0)
	if _, state := keyspace.TTL("k"); state != db.TTLNone {
		t.Errorf("Expected TTLNone after overwrite without ttl, got %v", state)
	}

	clock.Advance(time.Minute)
	if !keyspace.Has("k") {
		t.Errorf("Expected key to survive, its TTL was cleared by the overwrite")
	}
}

func testDelete(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureDelete|db.FeatureGet)

	keyspace.Set("delete-me", []byte("value"), 0)

	if removed := keyspace.Delete("delete-me"); !removed {
		t.Errorf("Expected Delete of an existing key to report removed=true")
	}
	if _, exists := keyspace.Get("delete-me"); exists {
		t.Errorf("Expected key to be gone after Delete")
	}
	if removed := keyspace.Delete("delete-me"); removed {
		t.Errorf("Expected Delete of a missing key to report removed=false")
	}

	// deleting an expired entry counts as deleting a missing key
	keyspace.Set("expired", []byte("value"), time.Second)
	clock.Advance(2 * time.Second)
	if removed := keyspace.Delete("expired"); removed {
		t.Errorf("Expected Delete of an expired key to report removed=false")
	}
}

func testHas(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureHas)

	if keyspace.Has("missing") {
		t.Errorf("Expected Has on a missing key to be false")
	}

	keyspace.Set("present", []byte("value"), 0)
	if !keyspace.Has("present") {
		t.Errorf("Expected Has on a present key to be true")
	}
}

func testIncr(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureIncr)

	// a fresh key starts at 0 and yields delta
	v, err := keyspace.Incr("counter", 1)
	if err != nil {
		t.Fatalf("Incr on fresh key failed: %v", err)
	}
	if v != 1 {
		t.Errorf("Expected Incr on fresh key to yield 1, got %d", v)
	}

	// repeating it n times yields n
	for i := 2; i <= 10; i++ {
		v, err = keyspace.Incr("counter", 1)
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if v != int64(i) {
			t.Errorf("Expected Incr #%d to yield %d, got %d", i, i, v)
		}
	}

	// arbitrary and negative deltas
	if v, _ = keyspace.Incr("counter", 90); v != 100 {
		t.Errorf("Expected 100, got %d", v)
	}
	if v, _ = keyspace.Incr("counter", -40); v != 60 {
		t.Errorf("Expected 60, got %d", v)
	}

	// the stored payload stays a valid decimal string
	if raw, _ := keyspace.Get("counter"); string(raw) != "60" {
		t.Errorf("Expected stored payload \"60\", got %q", raw)
	}

	// Incr preserves an existing TTL
	keyspace.Set("limited", []byte("5"), 30*time.Second)
	if v, _ = keyspace.Incr("limited", 1); v != 6 {
		t.Errorf("Expected 6, got %d", v)
	}
	if _, state := keyspace.TTL("limited"); state != db.TTLSet {
		t.Errorf("Expected Incr to preserve the TTL, got state %v", state)
	}

	// Incr on an expired key starts from 0 again
	clock.Advance(time.Minute)
	if v, _ = keyspace.Incr("limited", 1); v != 1 {
		t.Errorf("Expected Incr on expired key to yield 1, got %d", v)
	}
}

func testIncrTypeMismatch(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureIncr|db.FeatureGet)

	keyspace.Set("text", []byte("abc"), 0)

	_, err := keyspace.Incr("text", 1)
	if !errors.Is(err, db.ErrNotAnInteger) {
		t.Errorf("Expected ErrNotAnInteger, got %v", err)
	}

	// a failed Incr leaves the stored value unchanged
	if raw, _ := keyspace.Get("text"); string(raw) != "abc" {
		t.Errorf("Expected failed Incr to leave the value unchanged, got %q", raw)
	}
}

func testExpireTTL(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureExpire|db.FeatureTTL)

	// TTL three-way result
	if _, state := keyspace.TTL("missing"); state != db.TTLMissing {
		t.Errorf("Expected TTLMissing for a missing key, got %v", state)
	}

	keyspace.Set("k", []byte("v"), 0)
	if _, state := keyspace.TTL("k"); state != db.TTLNone {
		t.Errorf("Expected TTLNone for a key without ttl, got %v", state)
	}

	if ok := keyspace.Expire("k", 10*time.Second); !ok {
		t.Errorf("Expected Expire on an existing key to report true")
	}
	remaining, state := keyspace.TTL("k")
	if state != db.TTLSet {
		t.Errorf("Expected TTLSet after Expire, got %v", state)
	}
	if remaining <= 0 || remaining > 10*time.Second {
		t.Errorf("Expected remaining in (0, 10s], got %v", remaining)
	}

	// the clock ticking down is visible in TTL
	clock.Advance(4 * time.Second)
	if remaining, _ = keyspace.TTL("k"); remaining > 6*time.Second {
		t.Errorf("Expected remaining <= 6s after advancing 4s, got %v", remaining)
	}

	// Expire on a missing key reports false
	if ok := keyspace.Expire("missing", time.Second); ok {
		t.Errorf("Expected Expire on a missing key to report false")
	}

	// non-positive ttl expires immediately
	keyspace.Set("gone", []byte("v"), 0)
	if ok := keyspace.Expire("gone", 0); !ok {
		t.Errorf("Expected Expire(0) on an existing key to report true")
	}
	if keyspace.Has("gone") {
		t.Errorf("Expected key to be absent right after Expire(0)")
	}
	if _, state := keyspace.TTL("gone"); state != db.TTLMissing {
		t.Errorf("Expected TTLMissing after Expire(0), got %v", state)
	}
}

func testKeyExpiry(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureGet|db.FeatureHas)

	keyspace.Set("expiring", []byte("value"), 10*time.Second)

	// visible immediately
	if !keyspace.Has("expiring") {
		t.Errorf("Expected key to exist immediately after Set with ttl")
	}

	// still visible just before the deadline
	clock.Advance(9 * time.Second)
	if _, exists := keyspace.Get("expiring"); !exists {
		t.Errorf("Expected key to exist 1s before its deadline")
	}

	// logically absent once simulated time passes the deadline
	clock.Advance(2 * time.Second)
	if _, exists := keyspace.Get("expiring"); exists {
		t.Errorf("Expected key to be absent after its deadline")
	}
	if keyspace.Has("expiring") {
		t.Errorf("Expected Has to be false after the deadline")
	}
}

func testKeys(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureKeys)

	keyspace.Set("user:1", []byte("a"), 0)
	keyspace.Set("user:2", []byte("b"), 0)
	keyspace.Set("order:1", []byte("c"), 0)

	keys, err := keyspace.Keys("user:*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "user:1" || keys[1] != "user:2" {
		t.Errorf("Expected [user:1 user:2], got %v", keys)
	}

	keys, err = keyspace.Keys("*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("Expected 3 keys for pattern *, got %v", keys)
	}

	// expired entries are excluded (and evicted) by the scan
	keyspace.Set("user:3", []byte("d"), time.Second)
	clock.Advance(2 * time.Second)
	keys, _ = keyspace.Keys("user:*")
	sort.Strings(keys)
	if len(keys) != 2 {
		t.Errorf("Expected expired key to be excluded, got %v", keys)
	}

	// malformed patterns are rejected
	if _, err = keyspace.Keys("[oops"); err == nil {
		t.Errorf("Expected an error for a malformed pattern")
	}
}

func testFlush(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureSet|db.FeatureFlush|db.FeatureKeys)

	for i := 0; i < 100; i++ {
		keyspace.Set(fmt.Sprintf("key-%d", i), []byte("value"), 0)
	}

	if removed := keyspace.Flush(); removed != 100 {
		t.Errorf("Expected Flush to remove 100 entries, got %d", removed)
	}

	keys, _ := keyspace.Keys("*")
	if len(keys) != 0 {
		t.Errorf("Expected no keys after Flush, got %v", keys)
	}
	if n := keyspace.Len(); n != 0 {
		t.Errorf("Expected Len 0 after Flush, got %d", n)
	}

	if removed := keyspace.Flush(); removed != 0 {
		t.Errorf("Expected Flush of an empty keyspace to remove 0, got %d", removed)
	}
}

func testConcurrentIncr(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace, db.FeatureIncr|db.FeatureGet)

	const (
		goroutines = 8
		perWorker  = 1000
	)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := keyspace.Incr("shared-counter", 1); err != nil {
					t.Errorf("Incr failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// no increment may be lost: read-modify-write must be atomic
	raw, _ := keyspace.Get("shared-counter")
	want := fmt.Sprintf("%d", goroutines*perWorker)
	if string(raw) != want {
		t.Errorf("Expected counter %s, got %q", want, raw)
	}
}

func testRealisticUsage(t *testing.T, factory KeyspaceFactory) {
	clock := NewSimClock()
	keyspace := factory(clock.Now)
	defer keyspace.Close()

	requireFeature(t, keyspace,
		db.FeatureSet|db.FeatureGet|db.FeatureIncr|db.FeatureExpire|db.FeatureHas)

	// the canonical scenario: set, incr, expire(0), observe absence
	keyspace.Set("a", []byte("1"), 0)
	if v, _ := keyspace.Incr("a", 1); v != 2 {
		t.Errorf("Expected Incr to yield 2, got %d", v)
	}
	keyspace.Expire("a", 0)
	if _, exists := keyspace.Get("a"); exists {
		t.Errorf("Expected key to be absent after Expire(0)")
	}
	if keyspace.Has("a") {
		t.Errorf("Expected Has to be false after Expire(0)")
	}

	// session-cache style churn
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("session:%d:%d", w, i%50)
				switch i % 4 {
				case 0:
					keyspace.Set(key, []byte("payload"), time.Minute)
				case 1:
					keyspace.Get(key)
				case 2:
					keyspace.Incr(fmt.Sprintf("hits:%d", w), 1)
				case 3:
					keyspace.Expire(key, 30*time.Second)
				}
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < 4; w++ {
		raw, ok := keyspace.Get(fmt.Sprintf("hits:%d", w))
		if !ok || string(raw) != "125" {
			t.Errorf("Expected hits:%d == 125, got %q (ok=%v)", w, raw, ok)
		}
	}
}
