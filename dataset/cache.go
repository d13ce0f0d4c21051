package dataset

import (
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/YuminosukeSato/bikedash/pkg/log"
)

// Observer is notified about cache activity.
type Observer interface {
	CacheHit()
	CacheMiss()
	DatasetLoaded(path string, rows int)
}

// Cache memoizes one Dataset per file path. The first Get for a path loads
// the file; concurrent callers join that load and share its result.
// Failed loads are not cached.
type Cache struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	loads    singleflight.Group
	opts     []Option
	obs      Observer
	logger   log.Logger
}

// NewCache returns an empty cache. opts are passed to every Load.
func NewCache(obs Observer, logger log.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = log.Nop()
	}
	return &Cache{
		datasets: make(map[string]*Dataset),
		opts:     append(append([]Option(nil), opts...), WithLogger(logger)),
		obs:      obs,
		logger:   logger,
	}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (c *Cache) lookup(key string) (*Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ds, ok := c.datasets[key]
	return ds, ok
}

// Get returns the dataset for path, loading it on first use.
// A panic during the load reaches every caller waiting on it and leaves
// nothing behind, so the next Get loads again.
func (c *Cache) Get(path string) (*Dataset, error) {
	key := cacheKey(path)
	if ds, ok := c.lookup(key); ok {
		if c.obs != nil {
			c.obs.CacheHit()
		}
		return ds, nil
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		if c.obs != nil {
			c.obs.CacheMiss()
		}
		ds, err := Load(path, c.opts...)
		if err != nil {
			return nil, err
		}
		if c.obs != nil {
			c.obs.DatasetLoaded(path, ds.Len())
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		// a Reload that finished meanwhile wins
		if cur, ok := c.datasets[key]; ok {
			return cur, nil
		}
		c.datasets[key] = ds
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Reload loads path again and, on success, replaces the cached dataset.
// On failure the previous dataset stays in place.
func (c *Cache) Reload(path string) (*Dataset, error) {
	ds, err := Load(path, c.opts...)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.datasets[cacheKey(path)] = ds
	c.mu.Unlock()

	if c.obs != nil {
		c.obs.DatasetLoaded(path, ds.Len())
	}
	c.logger.Info("dataset reloaded",
		log.OperationKey, log.OperationReload,
		log.PathKey, path,
		log.RowsKey, ds.Len(),
	)
	return ds, nil
}

// Invalidate drops the cached dataset for path.
func (c *Cache) Invalidate(path string) {
	key := cacheKey(path)
	c.mu.Lock()
	delete(c.datasets, key)
	c.mu.Unlock()
	c.loads.Forget(key)
}
