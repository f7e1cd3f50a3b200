package tenancy

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/atriumhq/atrium/pkg/observability"
)

// CachingDirectory wraps a Directory with an expiring LRU cache keyed by each
// identifier kind separately. Negative results are not cached so a newly
// created tenant becomes visible within one lookup rather than one TTL.
type CachingDirectory struct {
	inner   Directory
	bySlug  *expirable.LRU[string, *Tenant]
	bySub   *expirable.LRU[string, *Tenant]
	byID    *expirable.LRU[string, *Tenant]
	metrics *observability.Metrics
}

// NewCachingDirectory creates a caching wrapper around inner. Metrics may be
// nil.
func NewCachingDirectory(inner Directory, size int, ttl time.Duration, metrics *observability.Metrics) *CachingDirectory {
	return &CachingDirectory{
		inner:   inner,
		bySlug:  expirable.NewLRU[string, *Tenant](size, nil, ttl),
		bySub:   expirable.NewLRU[string, *Tenant](size, nil, ttl),
		byID:    expirable.NewLRU[string, *Tenant](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachingDirectory) FindTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return c.lookup(ctx, c.bySlug, slug, c.inner.FindTenantBySlug)
}

func (c *CachingDirectory) FindTenantBySubdomain(ctx context.Context, subdomain string) (*Tenant, error) {
	return c.lookup(ctx, c.bySub, subdomain, c.inner.FindTenantBySubdomain)
}

func (c *CachingDirectory) FindTenantByID(ctx context.Context, id string) (*Tenant, error) {
	return c.lookup(ctx, c.byID, id, c.inner.FindTenantByID)
}

// Invalidate drops all cached entries for a tenant. Callers invoke this after
// updating or deactivating a tenant record.
func (c *CachingDirectory) Invalidate(tenant *Tenant) {
	if tenant == nil {
		return
	}
	c.bySlug.Remove(tenant.Slug)
	if tenant.Subdomain != "" {
		c.bySub.Remove(tenant.Subdomain)
	}
	c.byID.Remove(tenant.ID)
}

func (c *CachingDirectory) lookup(ctx context.Context, cache *expirable.LRU[string, *Tenant], key string, fetch func(context.Context, string) (*Tenant, error)) (*Tenant, error) {
	if tenant, ok := cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.TenantCacheHitsTotal.Inc()
		}
		return tenant, nil
	}
	if c.metrics != nil {
		c.metrics.TenantCacheMissesTotal.Inc()
	}

	tenant, err := fetch(ctx, key)
	if err != nil || tenant == nil {
		return tenant, err
	}
	cache.Add(key, tenant)
	return tenant, nil
}
