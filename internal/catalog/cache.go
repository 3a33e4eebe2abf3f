package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/klipy/klipy-go/media"
	"github.com/klipy/klipy-go/service"
)

// ErrSourceUnavailable indicates the cache has nothing to delegate to.
var ErrSourceUnavailable = errors.New("category source unavailable")

// Source lists the categories of one media type.
type Source interface {
	Categories(ctx context.Context, kind media.Type) (media.Categories, error)
}

// Resolver hands out the service for a media type. *klipy.SDK satisfies it.
type Resolver interface {
	ServiceFor(t media.Type) (service.Feed, error)
}

// ResolverSource adapts a Resolver into a Source.
type ResolverSource struct {
	Resolver Resolver
}

func (s ResolverSource) Categories(ctx context.Context, kind media.Type) (media.Categories, error) {
	if s.Resolver == nil {
		return nil, ErrSourceUnavailable
	}
	feed, err := s.Resolver.ServiceFor(kind)
	if err != nil {
		return nil, err
	}
	return feed.Categories(ctx)
}

type cacheEntry struct {
	categories media.Categories
	expires    time.Time
}

// Cache wraps a Source with a TTL-based in-memory cache keyed by media type.
type Cache struct {
	base Source
	ttl  time.Duration
	now  func() time.Time

	mu    sync.RWMutex
	items map[media.Type]cacheEntry
}

// NewCache returns a Source that caches lookups for ttl.
func NewCache(base Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		base:  base,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[media.Type]cacheEntry),
	}
}

// Categories returns cached categories when fresh, otherwise it delegates to
// the underlying source and stores the result. Failures are not cached.
func (c *Cache) Categories(ctx context.Context, kind media.Type) (media.Categories, error) {
	if c == nil || c.base == nil {
		return nil, ErrSourceUnavailable
	}

	now := c.now()

	c.mu.RLock()
	entry, ok := c.items[kind]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.categories, nil
	}

	categories, err := c.base.Categories(ctx, kind)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items[kind] = cacheEntry{categories: categories, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return categories, nil
}

// Invalidate drops the cached entry for kind.
func (c *Cache) Invalidate(kind media.Type) {
	c.mu.Lock()
	delete(c.items, kind)
	c.mu.Unlock()
}
