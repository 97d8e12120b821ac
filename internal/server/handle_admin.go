package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

type AdminLocationRequest struct {
	ID   string   `json:"id" required:"true"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat" required:"true"`
	Lng  *float64 `json:"lng" required:"true"`
}

type AdminUpsertResponse struct {
	Upserted int `json:"upserted"`
}

type AdminReloadResponse struct {
	Locations int `json:"locations"`
}

func handleAdminUpsertLocations(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req []AdminLocationRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req) == 0 {
			writeError(w, http.StatusBadRequest, "at least one location is required")
			return
		}

		locs := make([]game.Location, 0, len(req))
		for _, item := range req {
			p, err := PointRequest{Lat: item.Lat, Lng: item.Lng}.point()
			if err != nil {
				writeError(w, http.StatusBadRequest, item.ID+": "+err.Error())
				return
			}
			locs = append(locs, game.Location{ID: item.ID, Name: item.Name, Position: p})
		}

		if err := catalog.Upsert(r.Context(), locs); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminUpsertResponse{Upserted: len(locs)})
	}
}

func handleAdminReloadCatalog(logger *slog.Logger, catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := catalog.Reload(r.Context())
		if err != nil {
			logger.Error("catalog reload failed", "error", err)
			if errors.Is(err, geo.ErrInvalidInput) || errors.Is(err, game.ErrCatalogEmpty) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeGameError(w, err)
			return
		}
		logger.Info("catalog reloaded", "locations", n, "admin", adminFrom(r))
		writeJSON(w, http.StatusOK, AdminReloadResponse{Locations: n})
	}
}
