package secured

import "sync"

// ============================================================================
// RESOLUTION CACHE
// ============================================================================

// methodClassKey identifies one (method, runtime type) resolution.
// runtimeType is "" for static/unbound calls.
type methodClassKey struct {
	method      MethodRef
	runtimeType string
}

type cacheEntry struct {
	once  sync.Once
	perms []string
	err   error
}

// resolutionCache memoizes resolved permission sets per methodClassKey.
// Entries are created lazily and never evicted: the underlying metadata is
// immutable for a running process. The per-entry sync.Once guarantees the
// resolver runs at most once per distinct key, even under concurrent
// first-access from many goroutines.
type resolutionCache struct {
	mu      sync.Mutex
	entries map[methodClassKey]*cacheEntry
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{entries: make(map[methodClassKey]*cacheEntry)}
}

func (c *resolutionCache) getOrCompute(key methodClassKey, compute func() ([]string, error)) ([]string, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	// errors are memoized too: the resolver is pure, so a failed resolution
	// would fail identically on every retry
	e.once.Do(func() {
		e.perms, e.err = compute()
	})
	return e.perms, e.err
}

// size reports the number of resolved keys, for diagnostics
func (c *resolutionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
