package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

// Deps are the collaborators the API routes serve.
type Deps struct {
	Games   *Games
	Catalog *Catalog
	Broker  *Broker
	// Admin routes are mounted only when Admin is non-nil.
	Admin *AdminCredentials
}

func AddRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoGuess API", "/openapi.json", "/docs"))

	r.Get("/api/locations", handleListLocations(deps.Catalog))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", handleCreateSession(deps.Games))

		r.Route("/{id}", func(r chi.Router) {
			r.Use(gameMiddleware(deps.Games))
			r.Get("/", handleGetSession())
			r.Delete("/", handleDeleteSession(deps.Games))
			r.Post("/marker", handleMarker())
			r.Post("/guess", handleGuess())
			r.Post("/advance", handleAdvance())
			r.Get("/events", handleEvents(deps.Games, deps.Broker))
			r.Get("/ws", handleWS(logger, deps.Games, deps.Broker))
		})
	})

	if deps.Admin == nil {
		logger.Info("admin routes disabled")
		return
	}
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(*deps.Admin))
		r.Post("/locations", handleAdminUpsertLocations(deps.Catalog))
		r.Post("/catalog/reload", handleAdminReloadCatalog(logger, deps.Catalog))
	})
}
