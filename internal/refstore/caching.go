package refstore

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
)

type cacheEntry struct {
	target git.Target
	// missing is set if the reference did not exist.
	missing bool
}

// Caching is a RefStore remembering the result of lookups in an LRU cache,
// including lookups of references that do not exist. Failed lookups are not
// cached. The cache never expires by itself: it should only be used for
// the duration of a preparation, or purged whenever references change.
type Caching struct {
	store            reftx.RefStore
	cache            *lru.Cache
	cacheAccessTotal *prometheus.CounterVec
}

// NewCaching wraps the given store with a cache holding up to size entries.
func NewCaching(store reftx.RefStore, size int) (*Caching, error) {
	c := &Caching{
		store: store,
		cacheAccessTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reftx_refstore_cache_access_total",
				Help: "Total number of reference cache access operations",
			},
			[]string{"type"},
		),
	}

	cache, err := lru.NewWithEvict(size, func(key interface{}, value interface{}) {
		c.cacheAccessTotal.WithLabelValues("evict").Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("create reference cache: %w", err)
	}
	c.cache = cache

	return c, nil
}

// FindOneExisting returns the cached target of the reference or looks it up
// in the wrapped store.
func (c *Caching) FindOneExisting(ctx context.Context, name git.ReferenceName) (git.Target, error) {
	if value, ok := c.cache.Get(name); ok {
		c.cacheAccessTotal.WithLabelValues("hit").Inc()

		entry := value.(cacheEntry)
		if entry.missing {
			return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
		}
		return entry.target, nil
	}

	c.cacheAccessTotal.WithLabelValues("miss").Inc()

	target, err := c.store.FindOneExisting(ctx, name)
	switch {
	case err == nil:
		c.populate(name, cacheEntry{target: target})
	case errors.Is(err, git.ErrReferenceNotFound):
		c.populate(name, cacheEntry{missing: true})
	}

	return target, err
}

func (c *Caching) populate(name git.ReferenceName, entry cacheEntry) {
	c.cache.Add(name, entry)
	c.cacheAccessTotal.WithLabelValues("populate").Inc()
}

// Purge removes all entries from the cache.
func (c *Caching) Purge() {
	c.cache.Purge()
}

// Describe is used to describe Prometheus metrics.
func (c *Caching) Describe(descs chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, descs)
}

// Collect is used to collect Prometheus metrics.
func (c *Caching) Collect(metrics chan<- prometheus.Metric) {
	c.cacheAccessTotal.Collect(metrics)
}
