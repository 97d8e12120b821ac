package server

import "net/http"

// LocationSummary lists a catalog entry without its position.
type LocationSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func handleListLocations(catalog *Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pool := catalog.Pool()
		locs := pool.Locations()
		if r.URL.Query().Get("order") == "random" {
			locs = pool.Shuffled()
		}

		out := make([]LocationSummary, 0, len(locs))
		for _, loc := range locs {
			out = append(out, LocationSummary{ID: loc.ID, Name: loc.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
