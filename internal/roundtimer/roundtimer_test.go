package roundtimer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/geo"
)

var _ game.RoundTimer = (*Timer)(nil)

func waitForTimers(t *testing.T, clock *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, n))
}

func TestTimerFiresOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := New(clock)

	var fired atomic.Int32
	timer.Start(10*time.Second, func() { fired.Add(1) })
	waitForTimers(t, clock, 1)

	clock.Advance(9 * time.Second)
	assert.Never(t, func() bool { return fired.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	clock.Advance(time.Minute)
	assert.Never(t, func() bool { return fired.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestTimerCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := New(clock)

	var fired atomic.Int32
	cancel := timer.Start(time.Second, func() { fired.Add(1) })
	waitForTimers(t, clock, 1)

	cancel()
	cancel()
	clock.Advance(time.Hour)

	assert.Never(t, func() bool { return fired.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestTimerCancelAfterFire(t *testing.T) {
	clock := clockwork.NewFakeClock()
	timer := New(clock)

	var fired atomic.Int32
	cancel := timer.Start(time.Second, func() { fired.Add(1) })
	waitForTimers(t, clock, 1)

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	clock.Advance(time.Hour)
	assert.Never(t, func() bool { return fired.Load() != 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestTimerDrivesSessionTimeout(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pool, err := game.NewPool([]game.Location{
		{ID: "eiffel", Name: "Paris", Position: geo.Point{Lat: 48.8584, Lng: 2.2945}},
		{ID: "bigben", Name: "London", Position: geo.Point{Lat: 51.5007, Lng: -0.1246}},
	})
	require.NoError(t, err)

	changes := make(chan game.Snapshot, 8)
	s, err := game.NewSession(pool, game.Config{
		MaxRounds:     2,
		RoundDuration: 30 * time.Second,
		Timer:         New(clock),
		Now:           clock.Now,
		OnChange:      func(snap game.Snapshot) { changes <- snap },
	})
	require.NoError(t, err)
	defer s.Close()

	first := <-changes
	require.NotNil(t, first.Deadline)
	assert.Equal(t, clock.Now().Add(30*time.Second), *first.Deadline)

	waitForTimers(t, clock, 1)
	clock.Advance(30 * time.Second)

	select {
	case snap := <-changes:
		assert.Equal(t, game.PhaseRoundResolved, snap.Phase)
		assert.Equal(t, game.ResolvedByTimeout, snap.Outcome.ResolvedBy)
		assert.Zero(t, snap.TotalScore)
	case <-time.After(time.Second):
		t.Fatal("round did not time out")
	}

	// A guess in round 2 cancels its timer; advancing the clock changes nothing.
	_, err = s.Advance()
	require.NoError(t, err)
	<-changes
	waitForTimers(t, clock, 1)

	snap, err := s.SubmitGuess(geo.Point{Lat: 50, Lng: 1})
	require.NoError(t, err)
	<-changes

	clock.Advance(time.Minute)
	assert.Never(t, func() bool { return len(changes) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, snap, s.Snapshot())
}
