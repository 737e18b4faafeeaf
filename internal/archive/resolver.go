// resolver.go: bulk entity resolution for archive reads.
package archive

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/tphakala/playlog-go/internal/datastore"
)

// Resolver bulk-fetches the entities archived logs reference. One call
// resolves one reference kind for a whole archive read; ids missing from
// a result map are treated as deleted entities.
type Resolver interface {
	SoundsByID(ids []uint) (map[uint]*datastore.Sound, error)
	TracksByID(ids []uint) (map[uint]*datastore.Track, error)
	DiffusionsByID(ids []uint) (map[uint]*datastore.Diffusion, error)
}

// CachedResolver decorates a Resolver with a TTL cache so repeated
// archive reads within one process do not re-query unchanged entities.
// Misses are not cached: a deleted entity stays resolvable as absent
// without poisoning later reads after a re-create.
type CachedResolver struct {
	inner Resolver
	cache *cache.Cache
}

// NewCachedResolver wraps inner with an entity cache using the given TTL.
func NewCachedResolver(inner Resolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

// SoundsByID resolves sounds, serving cached entries and bulk-fetching
// the rest in a single inner call.
func (cr *CachedResolver) SoundsByID(ids []uint) (map[uint]*datastore.Sound, error) {
	return resolveCached(cr.cache, "sound", ids, cr.inner.SoundsByID)
}

// TracksByID resolves tracks through the cache.
func (cr *CachedResolver) TracksByID(ids []uint) (map[uint]*datastore.Track, error) {
	return resolveCached(cr.cache, "track", ids, cr.inner.TracksByID)
}

// DiffusionsByID resolves diffusions through the cache.
func (cr *CachedResolver) DiffusionsByID(ids []uint) (map[uint]*datastore.Diffusion, error) {
	return resolveCached(cr.cache, "diffusion", ids, cr.inner.DiffusionsByID)
}

func resolveCached[T any](c *cache.Cache, kind string, ids []uint, fetch func([]uint) (map[uint]*T, error)) (map[uint]*T, error) {
	result := make(map[uint]*T, len(ids))
	var missing []uint
	for _, id := range ids {
		if cached, ok := c.Get(cacheKey(kind, id)); ok {
			result[id] = cached.(*T)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := fetch(missing)
	if err != nil {
		return nil, err
	}
	for id, entity := range fetched {
		result[id] = entity
		c.SetDefault(cacheKey(kind, id), entity)
	}
	return result, nil
}

func cacheKey(kind string, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
