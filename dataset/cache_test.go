package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	hits, misses, loads atomic.Int64
}

func (o *countingObserver) CacheHit()                 { o.hits.Add(1) }
func (o *countingObserver) CacheMiss()                { o.misses.Add(1) }
func (o *countingObserver) DatasetLoaded(string, int) { o.loads.Add(1) }

func TestCacheGetLoadsOnce(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	obs := &countingObserver{}
	cache := NewCache(obs, nil)

	first, err := cache.Get(path)
	require.NoError(t, err)
	second, err := cache.Get(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), obs.misses.Load())
	assert.Equal(t, int64(1), obs.hits.Load())
	assert.Equal(t, int64(1), obs.loads.Load())
}

func TestCacheConcurrentGet(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	obs := &countingObserver{}
	cache := NewCache(obs, nil)

	const workers = 8
	results := make([]*Dataset, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ds, err := cache.Get(path)
			assert.NoError(t, err)
			results[i] = ds
		}(i)
	}
	wg.Wait()

	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
	assert.Equal(t, int64(1), obs.loads.Load())
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.csv")
	cache := NewCache(nil, nil)

	_, err := cache.Get(path)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	ds, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())
}

func TestCacheLoadPanicDoesNotBlock(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	obs := &countingObserver{}
	explode := func(*options) { panic("broken option") }
	cache := NewCache(obs, nil, explode)

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.Panics(t, func() { _, _ = cache.Get(path) })
		assert.Panics(t, func() { _, _ = cache.Get(path) })
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Get blocked after a panicking load")
	}
	assert.Equal(t, int64(2), obs.misses.Load())
	assert.Zero(t, obs.loads.Load())
}

func TestCacheReloadAndInvalidate(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	cache := NewCache(nil, nil)

	before, err := cache.Get(path)
	require.NoError(t, err)

	shorter := sampleCSV[:len(sampleCSV)-len("5,2011-06-18,Summer,0,6,23,1,0.62,0.61,0.10,NA\n")]
	require.NoError(t, os.WriteFile(path, []byte(shorter), 0o644))

	after, err := cache.Reload(path)
	require.NoError(t, err)
	assert.Equal(t, 4, after.Len())
	assert.Equal(t, 5, before.Len(), "previously returned dataset must not change")

	got, err := cache.Get(path)
	require.NoError(t, err)
	assert.Same(t, after, got)

	cache.Invalidate(path)
	fresh, err := cache.Get(path)
	require.NoError(t, err)
	assert.NotSame(t, after, fresh)
}

func TestCacheReloadFailureKeepsPrevious(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	cache := NewCache(nil, nil)

	before, err := cache.Get(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("dteday,hr\n2011-01-01,1\n"), 0o644))
	_, err = cache.Reload(path)
	require.Error(t, err)

	got, err := cache.Get(path)
	require.NoError(t, err)
	assert.Same(t, before, got)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeTemp(t, "all_data.csv", sampleCSV)
	cache := NewCache(nil, nil)
	_, err := cache.Get(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, cache, path, nil) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	extra := sampleCSV + "6,2011-06-19,Summer,0,6,10,1,0.60,0.50,0.12,300\n"
	require.NoError(t, os.WriteFile(path, []byte(extra), 0o644))

	require.Eventually(t, func() bool {
		ds, err := cache.Get(path)
		return err == nil && ds.Len() == 6
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
