package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/roundtimer"
)

// GameSettings are the defaults applied to new games.
type GameSettings struct {
	MaxRounds     int
	RoundDuration time.Duration
	// IdleTTL discards games nobody touched for this long. Zero keeps them
	// until they are deleted.
	IdleTTL time.Duration
}

// Game is one live session and its bookkeeping.
type Game struct {
	ID      string
	Session *game.Session

	mu       sync.Mutex
	lastSeen time.Time
}

func (g *Game) touch(now time.Time) {
	g.mu.Lock()
	g.lastSeen = now
	g.mu.Unlock()
}

func (g *Game) idleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSeen
}

// Games is the in-memory registry of running sessions. Nothing is persisted;
// a restart forgets every game.
type Games struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	timer    game.RoundTimer
	catalog  *Catalog
	broker   *Broker
	settings GameSettings

	mu    sync.RWMutex
	games map[string]*Game
}

func NewGames(logger *slog.Logger, clock clockwork.Clock, catalog *Catalog, broker *Broker, settings GameSettings) *Games {
	return &Games{
		logger:   logger,
		clock:    clock,
		timer:    roundtimer.New(clock),
		catalog:  catalog,
		broker:   broker,
		settings: settings,
		games:    make(map[string]*Game),
	}
}

// Create starts a new game. maxRounds <= 0 uses the default.
func (g *Games) Create(maxRounds int) (*Game, error) {
	if maxRounds <= 0 {
		maxRounds = g.settings.MaxRounds
	}

	id := uuid.NewString()
	logger := g.logger.With("game_id", id)

	s, err := game.NewSession(g.catalog.Pool(), game.Config{
		MaxRounds:     maxRounds,
		RoundDuration: g.settings.RoundDuration,
		Timer:         g.timer,
		Now:           g.clock.Now,
		OnChange: func(snap game.Snapshot) {
			logger.Debug("game state changed",
				"version", snap.Version,
				"phase", snap.Phase,
				"round", snap.Round,
				"total_score", snap.TotalScore,
			)
			g.broker.Publish(id, newSessionView(id, snap))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	gm := &Game{ID: id, Session: s, lastSeen: g.clock.Now()}

	g.mu.Lock()
	g.games[id] = gm
	g.mu.Unlock()

	logger.Info("game created", "max_rounds", maxRounds, "round_duration", g.settings.RoundDuration)
	return gm, nil
}

func (g *Games) Get(id string) (*Game, error) {
	g.mu.RLock()
	gm, ok := g.games[id]
	g.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	gm.touch(g.clock.Now())
	return gm, nil
}

// keepAlive marks the game as used without a lookup. Long-lived streams call
// it for activity that does not pass through Get.
func (g *Games) keepAlive(gm *Game) {
	gm.touch(g.clock.Now())
}

// Discard removes a game, closes its session and ends its streams. It
// reports whether the game existed.
func (g *Games) Discard(id string) bool {
	return g.discard(id, func(*Game) bool { return true })
}

// discard removes the game only if remove still agrees under the lock.
func (g *Games) discard(id string, remove func(*Game) bool) bool {
	g.mu.Lock()
	gm, ok := g.games[id]
	if ok && remove(gm) {
		delete(g.games, id)
	} else {
		ok = false
	}
	g.mu.Unlock()
	if !ok {
		return false
	}
	gm.Session.Close()
	g.broker.CloseGame(id)
	g.logger.Info("game discarded", "game_id", id)
	return true
}

func (g *Games) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.games)
}

// Sweep discards games idle for longer than the configured TTL and returns
// how many it removed.
func (g *Games) Sweep() int {
	if g.settings.IdleTTL <= 0 {
		return 0
	}
	cutoff := g.clock.Now().Add(-g.settings.IdleTTL)

	idle := func(gm *Game) bool { return gm.idleSince().Before(cutoff) }

	var stale []string
	g.mu.RLock()
	for id, gm := range g.games {
		if idle(gm) {
			stale = append(stale, id)
		}
	}
	g.mu.RUnlock()

	// A game touched since the scan survives.
	n := 0
	for _, id := range stale {
		if g.discard(id, idle) {
			n++
		}
	}
	return n
}

// RunJanitor sweeps idle games every interval until ctx is done.
func (g *Games) RunJanitor(ctx context.Context, interval time.Duration) error {
	if g.settings.IdleTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := g.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if n := g.Sweep(); n > 0 {
				g.logger.Info("discarded idle games", "count", n)
			}
		}
	}
}

// Close closes every game and ends their streams.
func (g *Games) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, gm := range g.games {
		gm.Session.Close()
		g.broker.CloseGame(id)
		delete(g.games, id)
	}
}
