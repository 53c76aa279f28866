package ffe

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/RMahshie/farfield/pkg/farfield"
)

// DefaultCacheSize is the number of parsed datasets kept by a Cache.
const DefaultCacheSize = 32

// Cache memoises Parser.Parse by the exact, ordered list of paths. Entries
// are evicted least-recently-used once the capacity is reached. File changes
// on disk are not detected: use Refresh, Invalidate or Purge.
type Cache struct {
	parser   *Parser
	entries  *lru.Cache[string, *farfield.Dataset]
	inflight singleflight.Group
	recorder Recorder

	// generations is bumped by Refresh and Invalidate so a parse that
	// started earlier cannot overwrite a newer entry.
	mu          sync.Mutex
	generations map[string]uint64
}

// NewCache wraps parser with a cache of the given capacity. A capacity
// below 1 uses DefaultCacheSize.
func NewCache(parser *Parser, capacity int) (*Cache, error) {
	if capacity < 1 {
		capacity = DefaultCacheSize
	}
	entries, err := lru.New[string, *farfield.Dataset](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{
		parser:      parser,
		entries:     entries,
		recorder:    parser.recorder,
		generations: make(map[string]uint64),
	}, nil
}

// Parse returns the cached dataset for paths, parsing it on a miss.
// Concurrent misses for the same paths share one parse. The shared parse is
// not tied to any one caller's context: a caller whose ctx ends stops
// waiting, the others still get the result.
func (c *Cache) Parse(ctx context.Context, paths ...string) (*farfield.Dataset, error) {
	key := cacheKey(paths)
	if ds, ok := c.entries.Get(key); ok {
		c.recorder.CacheHit()
		return ds, nil
	}
	c.recorder.CacheMiss()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parseCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		if ds, ok := c.entries.Get(key); ok {
			return ds, nil
		}
		gen := c.generation(key)
		ds, err := c.parser.Parse(parseCtx, paths...)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, ds)
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*farfield.Dataset), nil
	}
}

// Refresh parses paths from the source regardless of the cache and replaces
// any cached entry. Parses already in flight for the same paths no longer
// update the cache.
func (c *Cache) Refresh(ctx context.Context, paths ...string) (*farfield.Dataset, error) {
	key := cacheKey(paths)
	gen := c.bump(key)
	c.inflight.Forget(key)
	ds, err := c.parser.Parse(ctx, paths...)
	if err != nil {
		return nil, err
	}
	c.store(key, gen, ds)
	return ds, nil
}

// Invalidate drops the entry for paths and reports whether one existed.
func (c *Cache) Invalidate(paths ...string) bool {
	key := cacheKey(paths)
	c.bump(key)
	c.inflight.Forget(key)
	ok := c.entries.Remove(key)
	c.recorder.CacheEntries(c.entries.Len())
	return ok
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.entries.Purge()
	c.recorder.CacheEntries(0)
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

func (c *Cache) bump(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	return c.generations[key]
}

// store adds ds unless the key moved past gen while it was being parsed.
func (c *Cache) store(key string, gen uint64, ds *farfield.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != gen {
		return
	}
	c.entries.Add(key, ds)
	c.recorder.CacheEntries(c.entries.Len())
}

// Paths never contain NUL, so joining on it keeps keys unambiguous.
func cacheKey(paths []string) string {
	return strings.Join(paths, "\x00")
}

var (
	defaultCache     *Cache
	defaultCacheOnce sync.Once
)

// DefaultCache returns the process-wide cache used by Parse. It reads local
// files with default Parser settings and lives for the life of the process.
func DefaultCache() *Cache {
	defaultCacheOnce.Do(func() {
		c, err := NewCache(NewParser(), DefaultCacheSize)
		if err != nil {
			panic(err)
		}
		defaultCache = c
	})
	return defaultCache
}

// Parse parses local FFE files through the process-wide cache.
func Parse(ctx context.Context, paths ...string) (*farfield.Dataset, error) {
	return DefaultCache().Parse(ctx, paths...)
}
