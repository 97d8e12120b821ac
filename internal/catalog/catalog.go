// Package catalog loads and validates the fixed list of candidate locations.
// A catalog is validated once, at load time; the game core trusts it after
// that.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

var ErrDuplicateID = fmt.Errorf("%w: duplicate location id", geo.ErrInvalidInput)

//go:embed default.yaml
var defaultYAML []byte

type entry struct {
	ID   string  `yaml:"id"`
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

type file struct {
	Locations []entry `yaml:"locations"`
}

// Default returns the embedded catalog.
func Default() []game.Location {
	locs, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return locs
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) ([]game.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	locs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return locs, nil
}

// Parse decodes a YAML catalog, preserving its order, and validates it.
func Parse(data []byte) ([]game.Location, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	locs := make([]game.Location, 0, len(f.Locations))
	for _, e := range f.Locations {
		locs = append(locs, game.Location{
			ID:       strings.TrimSpace(e.ID),
			Name:     strings.TrimSpace(e.Name),
			Position: geo.Point{Lat: e.Lat, Lng: e.Lng},
		})
	}
	if err := Validate(locs); err != nil {
		return nil, err
	}
	return locs, nil
}

// Validate checks that locs is non-empty, that every ID is present and
// unique and that every position is in range. All problems are reported.
func Validate(locs []game.Location) error {
	if len(locs) == 0 {
		return game.ErrCatalogEmpty
	}

	var errs []error
	seen := make(map[string]int, len(locs))
	for i, loc := range locs {
		if loc.ID == "" {
			errs = append(errs, fmt.Errorf("%w: location %d has no id", geo.ErrInvalidInput, i))
			continue
		}
		if first, dup := seen[loc.ID]; dup {
			errs = append(errs, fmt.Errorf("%w %q at %d and %d", ErrDuplicateID, loc.ID, first, i))
			continue
		}
		seen[loc.ID] = i
		if err := loc.Position.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("location %q: %w", loc.ID, err))
		}
	}
	return errors.Join(errs...)
}
