package rowan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodisdb/lodis/lib/db"
	dbtesting "github.com/lodisdb/lodis/lib/db/testing"
)

func TestOptionsDefaults(t *testing.T) {
	// nil options and zero values fall back to sane defaults
	keyspace := New(nil)
	defer keyspace.Close()
	assert.True(t, keyspace.SupportsFeature(db.FeatureSet))

	keyspace = New(&Options{})
	defer keyspace.Close()
	keyspace.Set("key", []byte("value"), 0)
	v, ok := keyspace.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), v)
}

func TestValueIsolation(t *testing.T) {
	keyspace := New(nil)
	defer keyspace.Close()

	// mutating the caller's slice after Set must not change the stored value
	buf := []byte("original")
	keyspace.Set("key", buf, 0)
	buf[0] = 'X'

	v, ok := keyspace.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), v)

	// mutating the returned slice must not change the stored value either
	v[0] = 'Y'
	v2, ok := keyspace.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), v2)
}

func TestLenCountsExpiredBacklog(t *testing.T) {
	clock := dbtesting.NewSimClock()
	keyspace := New(&Options{NumShards: 2, Clock: clock.Now})
	defer keyspace.Close()

	keyspace.Set("live", []byte("v"), 0)
	keyspace.Set("dying", []byte("v"), 10*time.Millisecond)
	clock.Advance(time.Second)

	// the expired entry has not been observed yet, so it is still stored
	assert.Equal(t, 2, keyspace.Len())

	// observation evicts it
	assert.False(t, keyspace.Has("dying"))
	assert.Equal(t, 1, keyspace.Len())
}

func TestGetInfo(t *testing.T) {
	keyspace := New(&Options{NumShards: 4})
	defer keyspace.Close()

	for i := 0; i < 100; i++ {
		keyspace.Set(string(rune('a'+i%26))+"-key", []byte("0123456789"), 0)
	}

	info := keyspace.GetInfo()
	assert.Equal(t, db.ImplRowan, info.DbType)
	assert.Equal(t, keyspace.Len(), info.Keys)
	assert.Greater(t, info.SizeBytes, 0)
	assert.Contains(t, info.SupportedFeatures, db.FeatureKeys)
	assert.NotNil(t, info.Metadata)
}
