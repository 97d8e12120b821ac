// Package geo holds the great-circle math and scoring used to resolve a guess.
// It has no external dependencies.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const (
	EarthRadiusKm = 6371.0
	MaxScore      = 5000
	// ScoreDecayKm is the distance at which a score falls to 1/e of MaxScore.
	ScoreDecayKm = 2000.0
)

var ErrInvalidInput = errors.New("invalid input")

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate reports ErrInvalidInput for NaN or out-of-range coordinates.
// Coordinates are never clamped.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidInput, p.Lat)
	}
	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidInput, p.Lng)
	}
	return nil
}

// DistanceKm returns the haversine distance between a and b rounded half-up to
// the nearest whole kilometre.
func DistanceKm(a, b Point) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return int(math.Floor(haversineKm(a, b) + 0.5)), nil
}

func haversineKm(a, b Point) float64 {
	φ1 := radians(a.Lat)
	φ2 := radians(b.Lat)
	dφ := radians(b.Lat - a.Lat)
	dλ := radians(b.Lng - a.Lng)

	sinDφ := math.Sin(dφ / 2)
	sinDλ := math.Sin(dλ / 2)

	h := sinDφ*sinDφ + math.Cos(φ1)*math.Cos(φ2)*sinDλ*sinDλ
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Score converts a distance into points: round(5000 * exp(-d/2000)).
// Negative distances score as zero distance and NaN scores 0.
func Score(distanceKm float64) int {
	if math.IsNaN(distanceKm) {
		return 0
	}
	if distanceKm < 0 {
		distanceKm = 0
	}
	raw := float64(MaxScore) * math.Exp(-distanceKm/ScoreDecayKm)
	score := int(math.Round(math.Max(0, raw)))
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// InitialBearing returns the compass bearing in degrees [0, 360) of the
// great-circle path leaving from towards to. Identical points yield 0.
func InitialBearing(from, to Point) float64 {
	φ1 := radians(from.Lat)
	φ2 := radians(to.Lat)
	dλ := radians(to.Lng - from.Lng)

	y := math.Sin(dλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(dλ)
	if x == 0 && y == 0 {
		return 0
	}
	θ := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(θ+360, 360)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
