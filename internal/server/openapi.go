package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/geoguess/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type sessionPath struct {
	ID string `path:"id"`
}

type listLocationsQuery struct {
	Order string `query:"order" enum:"random" description:"Pass random for a shuffled listing."`
}

type pointOperation struct {
	sessionPath
	PointRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoGuess API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the GeoGuess location guessing game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the status of the catalog database and the loaded catalog.")
	getHealthz.AddRespStructure(map[string]health.Result{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]health.Result{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/locations
	listLocations, _ := r.NewOperationContext(http.MethodGet, "/api/locations")
	listLocations.SetSummary("List locations")
	listLocations.SetDescription("Lists catalog entries without their positions.")
	listLocations.AddReqStructure(listLocationsQuery{})
	listLocations.AddRespStructure([]LocationSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listLocations)

	// POST /api/sessions
	createSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	createSession.SetSummary("Start game")
	createSession.SetDescription("Starts a new game. Discards the game named by replaces, if any.")
	createSession.AddReqStructure(CreateSessionRequest{})
	createSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createSession)

	// GET /api/sessions/{id}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}")
	getSession.SetSummary("Get game")
	getSession.SetDescription("Returns the current view of a game. The answer is withheld while a round is open.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// DELETE /api/sessions/{id}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{id}")
	deleteSession.SetSummary("Discard game")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteSession)

	for _, op := range []struct{ path, summary, desc string }{
		{"/api/sessions/{id}/marker", "Place marker", "Pins a provisional marker. A timeout scores the pinned marker."},
		{"/api/sessions/{id}/guess", "Submit guess", "Resolves the open round with a guess."},
	} {
		oc, _ := r.NewOperationContext(http.MethodPost, op.path)
		oc.SetSummary(op.summary)
		oc.SetDescription(op.desc)
		oc.AddReqStructure(pointOperation{})
		oc.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		_ = r.AddOperation(oc)
	}

	// POST /api/sessions/{id}/advance
	advance, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{id}/advance")
	advance.SetSummary("Advance")
	advance.SetDescription("Moves from a resolved round to the next round, or ends the game after the last one.")
	advance.AddReqStructure(sessionPath{})
	advance.AddRespStructure(SessionView{}, openapi.WithHTTPStatus(http.StatusOK))
	advance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	advance.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(advance)

	// GET /api/sessions/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game views. The current view is sent first.")
	getEvents.AddReqStructure(sessionPath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/sessions/{id}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{id}/ws")
	getWS.SetSummary("WebSocket")
	getWS.SetDescription("Upgrades to a WebSocket that streams game views and accepts marker, guess and advance commands.")
	getWS.AddReqStructure(sessionPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// POST /api/admin/locations
	upsert, _ := r.NewOperationContext(http.MethodPost, "/api/admin/locations")
	upsert.SetSummary("Upsert locations")
	upsert.SetDescription("Adds or updates catalog entries. New games see them after a reload. Requires basic auth.")
	upsert.AddReqStructure([]AdminLocationRequest{})
	upsert.AddRespStructure(AdminUpsertResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	upsert.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	upsert.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(upsert)

	// POST /api/admin/catalog/reload
	reload, _ := r.NewOperationContext(http.MethodPost, "/api/admin/catalog/reload")
	reload.SetSummary("Reload catalog")
	reload.SetDescription("Loads the stored catalog into the pool used by new games. Requires basic auth.")
	reload.AddRespStructure(AdminReloadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	reload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	reload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(reload)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
