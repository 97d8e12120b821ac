package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/geoguess/internal/catalog"
	"github.com/playperu/geoguess/internal/database"
	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
	"github.com/playperu/geoguess/internal/migrations"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "changeme"
)

var (
	paris  = game.Location{ID: "pano-paris", Name: "Paris", Position: geo.Point{Lat: 48.8566, Lng: 2.3522}}
	london = geo.Point{Lat: 51.5074, Lng: -0.1278}
)

type testEnv struct {
	router http.Handler
	db     *sql.DB
	clock  *clockwork.FakeClock
	games  *Games
	broker *Broker
}

type envOption func(*GameSettings)

func withRoundDuration(d time.Duration) envOption {
	return func(s *GameSettings) { s.RoundDuration = d }
}

func withIdleTTL(d time.Duration) envOption {
	return func(s *GameSettings) { s.IdleTTL = d }
}

// newTestEnv serves a catalog holding only Paris, so every round's answer is
// known.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := catalog.NewStore(db)
	if _, err := store.SeedIfEmpty(ctx, []game.Location{paris}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cat, err := NewCatalog(ctx, store, nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	settings := GameSettings{MaxRounds: 3}
	for _, opt := range opts {
		opt(&settings)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClock()
	broker := NewBroker()
	games := NewGames(logger, clock, cat, broker, settings)
	t.Cleanup(games.Close)

	r := chi.NewRouter()
	AddRoutes(r, logger, Deps{
		Games:   games,
		Catalog: cat,
		Broker:  broker,
		Admin:   &AdminCredentials{User: testAdminUser, PasswordHash: string(hash)},
	})

	return &testEnv{router: r, db: db, clock: clock, games: games, broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) create(t *testing.T, body any) SessionView {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/sessions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeView(t, w)
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) SessionView {
	t.Helper()
	var v SessionView
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp.Error
}

func point(p geo.Point) PointRequest {
	return PointRequest{Lat: &p.Lat, Lng: &p.Lng}
}
