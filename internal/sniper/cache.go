package sniper

import (
	"context"
	"sync"
	"time"

	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

// FavoritesFetcher is the slice of the marketplace client the cache needs.
type FavoritesFetcher interface {
	GetFavorites(ctx context.Context) (map[int64]shopgoodwill.Favorite, error)
}

// FavoritesCache is a time-bounded memoized view of the remote favorites
// snapshot. The snapshot is replaced wholesale on refresh; entries for
// unfavorited items simply vanish. Safe for concurrent use: one writer (the
// refresh path under the lock), many readers.
type FavoritesCache struct {
	fetcher FavoritesFetcher
	now     func() time.Time

	mu          sync.Mutex
	entries     map[int64]shopgoodwill.Favorite
	lastUpdated time.Time
}

func NewFavoritesCache(f FavoritesFetcher) *FavoritesCache {
	return &FavoritesCache{fetcher: f, now: time.Now}
}

// Get returns the favorites, refreshing from the remote first if the
// snapshot is older than maxAge. On refresh failure the stale snapshot is
// retained and returned alongside the error, so a transient outage never
// blanks the working set out from under a scheduled action.
func (c *FavoritesCache) Get(ctx context.Context, maxAge time.Duration) (map[int64]shopgoodwill.Favorite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.lastUpdated.IsZero() && now.Sub(c.lastUpdated) <= maxAge {
		return c.entries, nil
	}

	fresh, err := c.fetcher.GetFavorites(ctx)
	if err != nil {
		return c.entries, err
	}
	c.entries = fresh
	c.lastUpdated = c.now()
	return c.entries, nil
}
