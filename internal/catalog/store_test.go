package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/geoguess/internal/database"
	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
	"github.com/playperu/geoguess/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Run(db))
	return NewStore(db)
}

func TestStoreUpsertKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Upsert(ctx, []game.Location{
		{ID: "b", Name: "B", Position: geo.Point{Lat: 1, Lng: 1}},
		{ID: "a", Name: "A", Position: geo.Point{Lat: 2, Lng: 2}},
	}))
	require.NoError(t, s.Upsert(ctx, []game.Location{
		{ID: "c", Name: "C", Position: geo.Point{Lat: 3, Lng: 3}},
		{ID: "b", Name: "B renamed", Position: geo.Point{Lat: 4, Lng: 4}},
	}))

	locs, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []game.Location{
		{ID: "b", Name: "B renamed", Position: geo.Point{Lat: 4, Lng: 4}},
		{ID: "a", Name: "A", Position: geo.Point{Lat: 2, Lng: 2}},
		{ID: "c", Name: "C", Position: geo.Point{Lat: 3, Lng: 3}},
	}, locs)
}

func TestStoreUpsertValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Upsert(ctx, []game.Location{{ID: "a", Name: "A", Position: geo.Point{Lat: -95}}})
	assert.ErrorIs(t, err, geo.ErrInvalidInput)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.ErrorIs(t, s.Check(ctx), game.ErrCatalogEmpty)

	seeded, err := s.SeedIfEmpty(ctx, Default())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedIfEmpty(ctx, []game.Location{{ID: "other", Name: "Other"}})
	require.NoError(t, err)
	assert.False(t, seeded)

	locs, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Default(), locs)
	assert.NoError(t, s.Check(ctx))
}

func TestStoreLoadEmpty(t *testing.T) {
	_, err := newTestStore(t).Load(context.Background())
	assert.ErrorIs(t, err, game.ErrCatalogEmpty)
}
