// Package game implements the round state machine and location pool of a
// single-player geolocation guessing game. Everything here is pure Go apart
// from the RoundTimer capability, which the host supplies.
package game

import (
	"errors"
	"fmt"

	"github.com/playperu/geoguess/internal/geo"
)

var (
	ErrInvalidInput      = geo.ErrInvalidInput
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionEnded      = fmt.Errorf("%w: session ended", ErrInvalidTransition)
	ErrSessionClosed     = fmt.Errorf("%w: session closed", ErrSessionEnded)
	ErrCatalogEmpty      = errors.New("catalog is empty")
)

// Location is one catalog entry: an opaque scene handle, its true position
// and a display name.
type Location struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Position geo.Point `json:"position"`
}

type Phase string

const (
	PhaseInRound       Phase = "in_round"
	PhaseRoundResolved Phase = "round_resolved"
	PhaseSessionOver   Phase = "session_over"
)

type Resolution string

const (
	ResolvedByGuess   Resolution = "guess"
	ResolvedByTimeout Resolution = "timeout"
)

// Outcome is the immutable result of one round. Guess and DistanceKm are nil
// when the round timed out with nothing pinned.
type Outcome struct {
	Round      int        `json:"round"`
	Location   Location   `json:"location"`
	Guess      *geo.Point `json:"guess"`
	DistanceKm *int       `json:"distanceKm"`
	Score      int        `json:"score"`
	ResolvedBy Resolution `json:"resolvedBy"`
}
