package introspect

import (
	"context"
	"time"

	"github.com/satishbabariya/prisma-bulk/query/cache"
)

// DefaultCatalogTTL bounds how long key metadata is trusted
const DefaultCatalogTTL = 5 * time.Minute

type keyInfo struct {
	column string
	ok     bool
}

// Catalog answers which column of a table the database generates keys
// for. Results are cached per table; failed lookups are not.
type Catalog struct {
	introspector Introspector
	q            Querier
	cache        *cache.LRU[keyInfo]
	ttl          time.Duration
}

// CatalogOption configures a Catalog
type CatalogOption func(*Catalog)

// WithTTL sets how long an entry stays valid. A negative ttl disables expiry.
func WithTTL(ttl time.Duration) CatalogOption {
	return func(c *Catalog) {
		c.ttl = ttl
	}
}

// WithCacheSize sets the number of tables remembered
func WithCacheSize(n int) CatalogOption {
	return func(c *Catalog) {
		c.cache = cache.NewLRU[keyInfo](n, 0)
	}
}

// NewCatalog creates a catalog reading through q
func NewCatalog(introspector Introspector, q Querier, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		introspector: introspector,
		q:            q,
		cache:        cache.NewLRU[keyInfo](256, 0),
		ttl:          DefaultCatalogTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Through returns a catalog reading through q that shares this catalog's cache
func (c *Catalog) Through(q Querier) *Catalog {
	cp := *c
	cp.q = q
	return &cp
}

// AutoIncrementKey returns the auto-increment primary key column of table
func (c *Catalog) AutoIncrementKey(ctx context.Context, table string) (string, bool, error) {
	key := c.cacheKey(table)
	if info, ok := c.cache.Get(key); ok {
		return info.column, info.ok, nil
	}

	t, err := c.introspector.Table(ctx, c.q, table)
	if err != nil {
		return "", false, err
	}

	column, ok := t.AutoIncrementKey()
	c.cache.Set(key, keyInfo{column: column, ok: ok}, c.ttl)
	return column, ok, nil
}

// Describe reads a table without consulting the cache
func (c *Catalog) Describe(ctx context.Context, table string) (*Table, error) {
	return c.introspector.Table(ctx, c.q, table)
}

// Invalidate forgets the cached metadata of table, or of every table when
// none are given
func (c *Catalog) Invalidate(tables ...string) {
	if len(tables) == 0 {
		c.cache.InvalidatePrefix(c.introspector.Provider() + ":")
		return
	}
	for _, t := range tables {
		c.cache.Invalidate(c.cacheKey(t))
	}
}

// Stats returns cache statistics
func (c *Catalog) Stats() cache.Stats {
	return c.cache.Stats()
}

func (c *Catalog) cacheKey(table string) string {
	return c.introspector.Provider() + ":" + table
}
