package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/playperu/geoguess/internal/game"
)

func TestGamesSweepDiscardsIdle(t *testing.T) {
	e := newTestEnv(t, withIdleTTL(time.Hour))

	idle, err := e.games.Create(0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	e.clock.Advance(45 * time.Minute)
	active, err := e.games.Create(0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	e.clock.Advance(30 * time.Minute)
	if n := e.games.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, err := e.games.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle game: err = %v, want ErrNotFound", err)
	}
	if _, err := e.games.Get(active.ID); err != nil {
		t.Errorf("active game: %v", err)
	}
}

func TestGamesGetKeepsGameAlive(t *testing.T) {
	e := newTestEnv(t, withIdleTTL(time.Hour))
	gm, _ := e.games.Create(0)

	for i := 0; i < 3; i++ {
		e.clock.Advance(40 * time.Minute)
		if _, err := e.games.Get(gm.ID); err != nil {
			t.Fatalf("get: %v", err)
		}
		e.games.Sweep()
	}
	if e.games.Len() != 1 {
		t.Errorf("games = %d, want 1", e.games.Len())
	}
}

func TestGamesSweepDisabledWithoutTTL(t *testing.T) {
	e := newTestEnv(t)
	e.games.Create(0)
	e.clock.Advance(24 * time.Hour)
	if n := e.games.Sweep(); n != 0 {
		t.Errorf("swept %d with no TTL", n)
	}
}

func TestGamesRunJanitor(t *testing.T) {
	e := newTestEnv(t, withIdleTTL(time.Minute))
	e.games.Create(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.games.RunJanitor(ctx, time.Minute) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	if err := e.clock.BlockUntilContext(waitCtx, 1); err != nil {
		t.Fatalf("waiting for janitor ticker: %v", err)
	}
	e.clock.Advance(2 * time.Minute)

	deadline := time.Now().Add(time.Second)
	for e.games.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if e.games.Len() != 0 {
		t.Error("janitor did not discard the idle game")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("janitor returned %v", err)
	}
}

func TestGamesKeptAliveByCommands(t *testing.T) {
	e := newTestEnv(t, withIdleTTL(time.Hour))
	gm, err := e.games.Create(10)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p := point(london)

	// Seven rounds, ten minutes apart, driven only by stream commands.
	for round := 1; round <= 7; round++ {
		e.clock.Advance(10 * time.Minute)
		if err := applyCommand(e.games, gm, Command{Type: "guess", Lat: p.Lat, Lng: p.Lng}); err != nil {
			t.Fatalf("round %d guess: %v", round, err)
		}
		if err := applyCommand(e.games, gm, Command{Type: "advance"}); err != nil {
			t.Fatalf("round %d advance: %v", round, err)
		}
		if n := e.games.Sweep(); n != 0 {
			t.Fatalf("round %d: swept %d active games", round, n)
		}
	}

	if _, err := e.games.Get(gm.ID); err != nil {
		t.Fatalf("game played over the stream was discarded: %v", err)
	}
	if got := gm.Session.Snapshot().Round; got != 8 {
		t.Errorf("round = %d, want 8", got)
	}
}

func TestDiscardedGameArmsNoTimers(t *testing.T) {
	e := newTestEnv(t, withRoundDuration(time.Minute))
	gm, err := e.games.Create(0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for round timer: %v", err)
	}
	p := point(london)
	if err := applyCommand(e.games, gm, Command{Type: "guess", Lat: p.Lat, Lng: p.Lng}); err != nil {
		t.Fatalf("guess: %v", err)
	}

	ch := e.broker.Subscribe(gm.ID)
	if !e.games.Discard(gm.ID) {
		t.Fatal("discard reported a missing game")
	}
	if _, open := <-ch; open {
		t.Error("discard left the game's subscription open")
	}

	// A stream that still holds the game keeps sending commands.
	err = applyCommand(e.games, gm, Command{Type: "advance"})
	if !errors.Is(err, game.ErrSessionClosed) {
		t.Fatalf("advance on discarded game: err = %v, want ErrSessionClosed", err)
	}
	if err := e.clock.BlockUntilContext(ctx, 0); err != nil {
		t.Errorf("timers still armed on a discarded game: %v", err)
	}
}
