package server

import (
	"errors"
	"net/http"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

type CreateSessionRequest struct {
	MaxRounds int `json:"maxRounds,omitempty"`
	// Replaces names a previous game to discard.
	Replaces string `json:"replaces,omitempty"`
}

type PointRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

var errMissingCoordinates = errors.New("lat and lng are required")

func (p PointRequest) point() (geo.Point, error) {
	if p.Lat == nil || p.Lng == nil {
		return geo.Point{}, errMissingCoordinates
	}
	return geo.Point{Lat: *p.Lat, Lng: *p.Lng}, nil
}

func handleCreateSession(games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.MaxRounds < 0 {
			writeError(w, http.StatusBadRequest, "maxRounds must not be negative")
			return
		}

		if req.Replaces != "" {
			games.Discard(req.Replaces)
		}

		gm, err := games.Create(req.MaxRounds)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, newSessionView(gm.ID, gm.Session.Snapshot()))
	}
}

func handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gm := gameFrom(r)
		writeJSON(w, http.StatusOK, newSessionView(gm.ID, gm.Session.Snapshot()))
	}
}

func handleDeleteSession(games *Games) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !games.Discard(gameFrom(r).ID) {
			writeGameError(w, ErrNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMarker() http.HandlerFunc {
	return handlePoint((*game.Session).PlaceMarker)
}

func handleGuess() http.HandlerFunc {
	return handlePoint((*game.Session).SubmitGuess)
}

func handlePoint(apply func(*game.Session, geo.Point) (game.Snapshot, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gm := gameFrom(r)

		var req PointRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := req.point()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		snap, err := apply(gm.Session, p)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(gm.ID, snap))
	}
}

func handleAdvance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gm := gameFrom(r)

		snap, err := gm.Session.Advance()
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(gm.ID, snap))
	}
}
