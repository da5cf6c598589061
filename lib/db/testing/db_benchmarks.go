package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/lodisdb/lodis/lib/db"
)

// RunKeyspaceBenchmarks runs all benchmarks for a db.Keyspace
// implementation.
func RunKeyspaceBenchmarks(b *testing.B, name string, factory KeyspaceFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory(time.Now))
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory(time.Now))
	})

	b.Run("SetWithExpiry", func(b *testing.B) {
		benchmarkSetWithExpiry(b, factory(time.Now))
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory(time.Now))
	})

	b.Run("Incr", func(b *testing.B) {
		benchmarkIncr(b, factory(time.Now))
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory(time.Now))
	})

	b.Run("Has", func(b *testing.B) {
		benchmarkHas(b, factory(time.Now))
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory(time.Now))
	})

	b.Run("Keys", func(b *testing.B) {
		benchmarkKeys(b, factory(time.Now))
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory(time.Now))
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation
func benchmarkSet(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			keyspace.Set(key, value, 0)
			counter++
		}
	})
}

// Benchmark for Set operation with existing keys
func benchmarkSetExisting(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet)

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		keyspace.Set(fmt.Sprintf("test-key-%d", i), []byte("seed"), 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			keyspace.Set(key, value, 0)
			counter++
		}
	})
}

// Benchmark for Set operation with a TTL
func benchmarkSetWithExpiry(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			keyspace.Set(key, []byte("test-value"), time.Minute)
			counter++
		}
	})
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet|db.FeatureGet)

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		keyspace.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"), 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			keyspace.Get(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for Incr operation (contended counter)
func benchmarkIncr(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureIncr)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			keyspace.Incr("counter", 1)
		}
	})
}

// Benchmark for Delete operation
func benchmarkDelete(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet|db.FeatureDelete)

	for i := 0; i < b.N; i++ {
		keyspace.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"), 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		keyspace.Delete(fmt.Sprintf("test-key-%d", i))
	}
}

// Benchmark for Has operation with existing keys
func benchmarkHas(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet|db.FeatureHas)

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		keyspace.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"), 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			keyspace.Has(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark for Has operation with missing keys
func benchmarkHasNot(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureHas)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			keyspace.Has(fmt.Sprintf("missing-key-%d", counter))
			counter++
		}
	})
}

// Benchmark for Keys enumeration over a fixed population
func benchmarkKeys(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace, db.FeatureSet|db.FeatureKeys)

	for i := 0; i < 1000; i++ {
		keyspace.Set(fmt.Sprintf("key_%d", i), []byte("test-value"), 0)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := keyspace.Keys("key_*"); err != nil {
			b.Fatalf("Keys failed: %v", err)
		}
	}
}

// Benchmark for mixed usage
func benchmarkMixedUsage(b *testing.B, keyspace db.Keyspace) {
	b.Cleanup(func() {
		keyspace.Close()
	})

	requireFeature(b, keyspace,
		db.FeatureSet|db.FeatureGet|db.FeatureIncr|db.FeatureDelete|db.FeatureHas)

	numKeys := 10000
	for i := 0; i < numKeys; i++ {
		keyspace.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"), 0)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter%numKeys)
			switch counter % 5 {
			case 0:
				keyspace.Set(key, []byte("new-value"), 0)
			case 1, 2:
				keyspace.Get(key)
			case 3:
				keyspace.Has(key)
			case 4:
				keyspace.Incr(fmt.Sprintf("counter-%d", counter%16), 1)
			}
			counter++
		}
	})
}
