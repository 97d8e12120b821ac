package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playperu/geoguess/internal/game"
)

// Store keeps the catalog in the locations table. Order is the insertion
// order of each ID; updating an existing ID keeps its place.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]game.Location, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, lat, lng
		FROM locations
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locs []game.Location
	for rows.Next() {
		var loc game.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Position.Lat, &loc.Position.Lng); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting locations: %w", err)
	}
	return n, nil
}

// Upsert validates locs and writes them in one transaction. New IDs are
// appended to the end of the catalog.
func (s *Store) Upsert(ctx context.Context, locs []game.Location) error {
	if err := Validate(locs); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, loc := range locs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO locations (id, name, lat, lng, position)
			VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM locations))
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				lat  = excluded.lat,
				lng  = excluded.lng
		`, loc.ID, loc.Name, loc.Position.Lat, loc.Position.Lng)
		if err != nil {
			return fmt.Errorf("upserting location %q: %w", loc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing locations: %w", err)
	}
	return nil
}

// SeedIfEmpty writes locs only when the table has no rows. It reports
// whether it wrote anything.
func (s *Store) SeedIfEmpty(ctx context.Context, locs []game.Location) (bool, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Upsert(ctx, locs); err != nil {
		return false, fmt.Errorf("seeding catalog: %w", err)
	}
	return true, nil
}

// Load reads the catalog and validates it again, so a row edited by hand
// cannot reach a game.
func (s *Store) Load(ctx context.Context) ([]game.Location, error) {
	locs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(locs); err != nil {
		return nil, fmt.Errorf("stored catalog: %w", err)
	}
	return locs, nil
}

// Check implements the health check: the database answers and the catalog
// is not empty.
func (s *Store) Check(ctx context.Context) error {
	n, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return game.ErrCatalogEmpty
	}
	return nil
}
