package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

func TestParse(t *testing.T) {
	locs, err := Parse([]byte(`
locations:
  - id: " pano-1 "
    name: First
    lat: 10.5
    lng: -20.25
  - id: pano-2
    name: Second
    lat: -45
    lng: 179.9
`))
	require.NoError(t, err)
	assert.Equal(t, []game.Location{
		{ID: "pano-1", Name: "First", Position: geo.Point{Lat: 10.5, Lng: -20.25}},
		{ID: "pano-2", Name: "Second", Position: geo.Point{Lat: -45, Lng: 179.9}},
	}, locs)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "empty",
			yaml:    "locations: []",
			wantErr: game.ErrCatalogEmpty,
		},
		{
			name: "duplicate id",
			yaml: `
locations:
  - {id: a, name: A, lat: 0, lng: 0}
  - {id: a, name: B, lat: 1, lng: 1}
`,
			wantErr: ErrDuplicateID,
		},
		{
			name: "latitude out of range",
			yaml: `
locations:
  - {id: a, name: A, lat: 90.5, lng: 0}
`,
			wantErr: geo.ErrInvalidInput,
		},
		{
			name: "missing id",
			yaml: `
locations:
  - {name: A, lat: 0, lng: 0}
`,
			wantErr: geo.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("locations: [::"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	err := Validate([]game.Location{
		{ID: "a", Position: geo.Point{Lat: 100}},
		{ID: "a"},
		{ID: "b", Position: geo.Point{Lng: 500}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), `location "a"`)
	assert.Contains(t, err.Error(), `location "b"`)
}

func TestDefaultCatalog(t *testing.T) {
	locs := Default()
	require.NotEmpty(t, locs)
	require.NoError(t, Validate(locs))

	_, err := game.NewPool(locs)
	assert.NoError(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("locations:\n  - {id: x, name: X, lat: 1, lng: 2}\n"), 0o644))

	locs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []game.Location{{ID: "x", Name: "X", Position: geo.Point{Lat: 1, Lng: 2}}}, locs)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
