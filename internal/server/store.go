package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"

	"github.com/playperu/geoguess/internal/game"
)

var ErrNotFound = errors.New("not found")

// CatalogStore is the persistent side of the catalog.
type CatalogStore interface {
	Load(ctx context.Context) ([]game.Location, error)
	Upsert(ctx context.Context, locs []game.Location) error
}

// Catalog holds the pool that new games draw from. Reload swaps in a fresh
// pool; games already running keep the one they started with.
type Catalog struct {
	store   CatalogStore
	pool    atomic.Pointer[game.Pool]
	newRand func() *rand.Rand
}

// NewCatalog loads the catalog once. It fails if the stored catalog is empty
// or invalid. newRand is called once per pool so pools never share a
// source; nil uses the pool's default seeding.
func NewCatalog(ctx context.Context, store CatalogStore, newRand func() *rand.Rand) (*Catalog, error) {
	c := &Catalog{store: store, newRand: newRand}
	if _, err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Pool() *game.Pool {
	return c.pool.Load()
}

// Reload reads the store into a new pool and returns its size. On error the
// current pool stays in place.
func (c *Catalog) Reload(ctx context.Context) (int, error) {
	locs, err := c.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	var opts []game.PoolOption
	if c.newRand != nil {
		opts = append(opts, game.WithRand(c.newRand()))
	}
	pool, err := game.NewPool(locs, opts...)
	if err != nil {
		return 0, err
	}
	c.pool.Store(pool)
	return pool.Len(), nil
}

func (c *Catalog) Upsert(ctx context.Context, locs []game.Location) error {
	return c.store.Upsert(ctx, locs)
}
