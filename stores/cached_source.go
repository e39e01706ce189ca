package stores

import (
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/oarkflow/secured"
)

// CachedSource is a read-through ristretto cache in front of an expensive
// MetadataSource, typically the SQL-backed one. It is bounded and TTL'd, which
// is fine here: a miss only means another lookup against the wrapped source.
// The Manager's own resolution cache is the unbounded, never-evicting layer.
type CachedSource struct {
	src   secured.MetadataSource
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedSource wraps src with a ristretto cache. numCounters, maxCost and
// bufferItems map straight onto ristretto's Config; ttl bounds entry lifetime
// (0 = no expiry).
func NewCachedSource(src secured.MetadataSource, numCounters, maxCost, bufferItems int64, ttl time.Duration) (*CachedSource, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &CachedSource{src: src, cache: c, ttl: ttl}, nil
}

// Close releases the underlying cache
func (c *CachedSource) Close() {
	c.cache.Close()
}

// Wait blocks until buffered writes are applied, useful in tests
func (c *CachedSource) Wait() {
	c.cache.Wait()
}

func (c *CachedSource) MostSpecificMethod(method secured.MethodRef, runtimeType string) (secured.MethodRef, error) {
	key := "s:" + method.String() + "@" + runtimeType
	if v, ok := c.cache.Get(key); ok {
		return v.(secured.MethodRef), nil
	}
	m, err := c.src.MostSpecificMethod(method, runtimeType)
	if err != nil {
		return secured.MethodRef{}, err
	}
	c.cache.SetWithTTL(key, m, 1, c.ttl)
	return m, nil
}

func (c *CachedSource) MethodPermissions(method secured.MethodRef) ([]string, error) {
	key := "m:" + method.String()
	if v, ok := c.cache.Get(key); ok {
		return v.([]string), nil
	}
	perms, err := c.src.MethodPermissions(method)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(key, perms, int64(1+len(perms)), c.ttl)
	return perms, nil
}

func (c *CachedSource) TypePermissions(typeName string) ([]string, error) {
	key := "t:" + typeName
	if v, ok := c.cache.Get(key); ok {
		return v.([]string), nil
	}
	perms, err := c.src.TypePermissions(typeName)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(key, perms, int64(1+len(perms)), c.ttl)
	return perms, nil
}
