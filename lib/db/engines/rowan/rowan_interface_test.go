package rowan

import (
	"testing"
	"time"

	"github.com/lodisdb/lodis/lib/db"
	dbtesting "github.com/lodisdb/lodis/lib/db/testing"
)

func Test(t *testing.T) {
	dbtesting.RunKeyspaceTests(t, "Rowan", func(clock func() time.Time) db.Keyspace {
		return New(&Options{Clock: clock})
	})
}

func Benchmark(b *testing.B) {
	dbtesting.RunKeyspaceBenchmarks(b, "Rowan", func(clock func() time.Time) db.Keyspace {
		return New(&Options{Clock: clock})
	})
}
