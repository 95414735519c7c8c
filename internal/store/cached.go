package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type cacheEntry struct {
	station   models.Station
	expiresAt time.Time
}

// CachedStore puts an LRU of station lookups in front of a remote store.
// Resolving a route looks every waypoint up, so hot stations are served from
// memory. Only hits are cached; a reset purges everything.
type CachedStore struct {
	backing models.StationStore
	lru     *lru.Cache[string, *cacheEntry]
	ttl     time.Duration
	clock   clock

	// generation changes on every DeleteAll so lookups that raced a reset
	// do not repopulate the cache with deleted stations.
	mu         sync.Mutex
	generation uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ models.StationStore = (*CachedStore)(nil)

func NewCachedStore(backing models.StationStore, size int, ttl time.Duration) (*CachedStore, error) {
	cache, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}
	return &CachedStore{
		backing: backing,
		lru:     cache,
		ttl:     ttl,
		clock:   systemClock{},
	}, nil
}

func (c *CachedStore) InsertIfAbsent(ctx context.Context, s models.Station) (bool, error) {
	gen := c.currentGeneration()

	inserted, err := c.backing.InsertIfAbsent(ctx, s)
	if err != nil || !inserted {
		return inserted, err
	}

	c.remember(gen, s)
	return true, nil
}

func (c *CachedStore) FindByName(ctx context.Context, name string) (*models.Station, error) {
	if entry, ok := c.lru.Get(name); ok {
		if c.clock.Now().Before(entry.expiresAt) {
			c.hits.Add(1)
			s := entry.station
			return &s, nil
		}
		c.lru.Remove(name)
	}
	c.misses.Add(1)

	gen := c.currentGeneration()
	s, err := c.backing.FindByName(ctx, name)
	if err != nil || s == nil {
		return s, err
	}

	c.remember(gen, *s)
	return s, nil
}

func (c *CachedStore) ListAll(ctx context.Context) ([]models.Station, error) {
	return c.backing.ListAll(ctx)
}

func (c *CachedStore) DeleteAll(ctx context.Context) error {
	err := c.backing.DeleteAll(ctx)

	// Purge even on failure: the backing store may be partially cleared.
	c.mu.Lock()
	c.generation++
	c.lru.Purge()
	c.mu.Unlock()

	log.Debug().Msg("Station lookup cache purged")
	return err
}

// Stats returns hit and miss counters.
func (c *CachedStore) Stats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":   c.hits.Load(),
		"lru_misses": c.misses.Load(),
	}
}

func (c *CachedStore) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *CachedStore) remember(gen uint64, s models.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.lru.Add(s.Name, &cacheEntry{
		station:   s,
		expiresAt: c.clock.Now().Add(c.ttl),
	})
}
