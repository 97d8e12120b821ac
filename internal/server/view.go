package server

import (
	"time"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

// Achievement names. They are derived from a snapshot every time and never
// stored.
const (
	AchievementBullseye     = "bullseye"
	AchievementSharpshooter = "sharpshooter"
	AchievementBeatTheClock = "beat_the_clock"
	AchievementOutOfTime    = "out_of_time"

	sharpshooterKm = 25
)

type LocationView struct {
	ID       string     `json:"id"`
	Name     string     `json:"name,omitempty"`
	Position *geo.Point `json:"position,omitempty"`
}

type OutcomeView struct {
	Round      int          `json:"round"`
	Location   LocationView `json:"location"`
	Guess      *geo.Point   `json:"guess"`
	DistanceKm *int         `json:"distanceKm"`
	Score      int          `json:"score"`
	ResolvedBy string       `json:"resolvedBy"`
	// BearingDeg points from the guess to the answer.
	BearingDeg *float64 `json:"bearingDeg"`
}

// SessionView is what clients see of a game. While a round is open the
// current location is reduced to its scene ID.
type SessionView struct {
	ID           string        `json:"id"`
	Version      uint64        `json:"version"`
	Phase        string        `json:"phase"`
	Round        int           `json:"round"`
	MaxRounds    int           `json:"maxRounds"`
	TotalScore   int           `json:"totalScore"`
	Location     LocationView  `json:"location"`
	Marker       *geo.Point    `json:"marker"`
	Deadline     *time.Time    `json:"deadline"`
	Outcome      *OutcomeView  `json:"outcome"`
	History      []OutcomeView `json:"history"`
	Achievements []string      `json:"achievements"`
}

func newSessionView(id string, snap game.Snapshot) SessionView {
	v := SessionView{
		ID:           id,
		Version:      snap.Version,
		Phase:        string(snap.Phase),
		Round:        snap.Round,
		MaxRounds:    snap.MaxRounds,
		TotalScore:   snap.TotalScore,
		Location:     LocationView{ID: snap.Location.ID},
		Marker:       snap.Marker,
		Deadline:     snap.Deadline,
		History:      make([]OutcomeView, 0, len(snap.History)),
		Achievements: achievements(snap),
	}
	if snap.Phase != game.PhaseInRound {
		v.Location = revealed(snap.Location)
	}
	if snap.Outcome != nil {
		o := newOutcomeView(*snap.Outcome)
		v.Outcome = &o
	}
	for _, o := range snap.History {
		v.History = append(v.History, newOutcomeView(o))
	}
	return v
}

func newOutcomeView(o game.Outcome) OutcomeView {
	v := OutcomeView{
		Round:      o.Round,
		Location:   revealed(o.Location),
		Guess:      o.Guess,
		DistanceKm: o.DistanceKm,
		Score:      o.Score,
		ResolvedBy: string(o.ResolvedBy),
	}
	if o.Guess != nil {
		b := geo.InitialBearing(*o.Guess, o.Location.Position)
		v.BearingDeg = &b
	}
	return v
}

func revealed(loc game.Location) LocationView {
	pos := loc.Position
	return LocationView{ID: loc.ID, Name: loc.Name, Position: &pos}
}

func achievements(snap game.Snapshot) []string {
	out := []string{}
	var bullseye, sharpshooter, timedOut, blank bool
	for _, o := range snap.History {
		if o.Score == geo.MaxScore {
			bullseye = true
		}
		if o.DistanceKm != nil && *o.DistanceKm <= sharpshooterKm {
			sharpshooter = true
		}
		if o.ResolvedBy == game.ResolvedByTimeout {
			timedOut = true
			if o.Guess == nil {
				blank = true
			}
		}
	}
	if bullseye {
		out = append(out, AchievementBullseye)
	}
	if sharpshooter {
		out = append(out, AchievementSharpshooter)
	}
	if snap.Phase == game.PhaseSessionOver && !timedOut {
		out = append(out, AchievementBeatTheClock)
	}
	if blank {
		out = append(out, AchievementOutOfTime)
	}
	return out
}
