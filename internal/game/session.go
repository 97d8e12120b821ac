package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playperu/geoguess/internal/geo"
)

// Config configures a Session. Rounds are untimed when Timer is nil or
// RoundDuration is zero.
type Config struct {
	MaxRounds     int
	RoundDuration time.Duration
	Timer         RoundTimer
	// Now stamps round deadlines. Defaults to time.Now.
	Now func() time.Time
	// OnChange receives the snapshot after every transition, outside the
	// session lock. Snapshots may arrive out of order; use Version.
	OnChange func(Snapshot)
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	Version    uint64     `json:"version"`
	Phase      Phase      `json:"phase"`
	Round      int        `json:"round"`
	MaxRounds  int        `json:"maxRounds"`
	TotalScore int        `json:"totalScore"`
	Location   Location   `json:"location"`
	UsedIDs    []string   `json:"usedIds"`
	Marker     *geo.Point `json:"marker"`
	Outcome    *Outcome   `json:"outcome"`
	History    []Outcome  `json:"history"`
	Deadline   *time.Time `json:"deadline"`
}

// Session is one play-through of MaxRounds rounds. All transitions are
// serialised by a single mutex, so exactly one resolving event wins each
// round.
type Session struct {
	mu  sync.Mutex
	cfg Config

	pool *Pool

	version    uint64
	phase      Phase
	round      int
	totalScore int
	current    Location
	used       map[string]struct{}
	usedOrder  []string
	marker     *geo.Point
	outcome    *Outcome
	history    []Outcome
	deadline   *time.Time
	cancel     func()
	closed     bool
}

// NewSession starts round 1 with a freshly drawn location.
func NewSession(pool *Pool, cfg Config) (*Session, error) {
	if pool == nil {
		return nil, ErrCatalogEmpty
	}
	if cfg.MaxRounds < 1 {
		return nil, fmt.Errorf("%w: max rounds must be positive, got %d", ErrInvalidInput, cfg.MaxRounds)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Session{
		cfg:   cfg,
		pool:  pool,
		round: 1,
		used:  make(map[string]struct{}),
	}

	s.mu.Lock()
	s.startRoundLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return s, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// PlaceMarker pins a provisional guess without resolving the round. A timeout
// resolves against the last pin.
func (s *Session) PlaceMarker(p geo.Point) (Snapshot, error) {
	if err := p.Validate(); err != nil {
		return s.Snapshot(), err
	}
	return s.transition(func() error {
		if err := s.requirePhaseLocked(PhaseInRound); err != nil {
			return err
		}
		pin := p
		s.marker = &pin
		return nil
	})
}

// SubmitGuess resolves the open round with an explicit guess.
func (s *Session) SubmitGuess(p geo.Point) (Snapshot, error) {
	if err := p.Validate(); err != nil {
		return s.Snapshot(), err
	}
	return s.transition(func() error {
		if err := s.requirePhaseLocked(PhaseInRound); err != nil {
			return err
		}
		return s.resolveLocked(&p, ResolvedByGuess)
	})
}

// ExpireRound resolves round by timeout. A notification for any round other
// than the current one is stale and ignored without error.
func (s *Session) ExpireRound(round int) (Snapshot, error) {
	return s.transition(func() error {
		if round != s.round {
			return errStale
		}
		if err := s.requirePhaseLocked(PhaseInRound); err != nil {
			return err
		}
		return s.resolveLocked(s.marker, ResolvedByTimeout)
	})
}

// Advance leaves a resolved round: either the next round starts or, after
// the last one, the session ends.
func (s *Session) Advance() (Snapshot, error) {
	return s.transition(func() error {
		if err := s.requirePhaseLocked(PhaseRoundResolved); err != nil {
			return err
		}
		if s.round == s.cfg.MaxRounds {
			s.phase = PhaseSessionOver
			return nil
		}
		s.round++
		s.outcome = nil
		s.marker = nil
		s.startRoundLocked()
		return nil
	})
}

// Close cancels any outstanding round timer. Every later transition fails
// with ErrSessionClosed, so no timer is armed again.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

var errStale = errors.New("stale timer notification")

// transition runs fn under the lock, bumps the version when fn succeeds and
// notifies OnChange after unlocking.
func (s *Session) transition(fn func() error) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, ErrSessionClosed
	}
	err := fn()
	if err == errStale {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if err != nil {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, err
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap, nil
}

func (s *Session) requirePhaseLocked(want Phase) error {
	if s.phase == PhaseSessionOver {
		return ErrSessionEnded
	}
	if s.phase != want {
		return fmt.Errorf("%w: session is %s, need %s", ErrInvalidTransition, s.phase, want)
	}
	return nil
}

func (s *Session) resolveLocked(guess *geo.Point, by Resolution) error {
	out := Outcome{
		Round:      s.round,
		Location:   s.current,
		ResolvedBy: by,
	}
	if guess != nil {
		km, err := geo.DistanceKm(*guess, s.current.Position)
		if err != nil {
			return err
		}
		g := *guess
		out.Guess = &g
		out.DistanceKm = &km
		out.Score = geo.Score(float64(km))
	}

	s.stopTimerLocked()
	s.outcome = &out
	s.history = append(s.history, out)
	s.totalScore += out.Score
	s.phase = PhaseRoundResolved
	return nil
}

func (s *Session) startRoundLocked() {
	s.current = s.pool.Draw(s.used)
	if _, seen := s.used[s.current.ID]; !seen {
		s.used[s.current.ID] = struct{}{}
		s.usedOrder = append(s.usedOrder, s.current.ID)
	}
	s.phase = PhaseInRound
	s.deadline = nil

	if s.cfg.Timer == nil || s.cfg.RoundDuration <= 0 {
		return
	}
	deadline := s.cfg.Now().Add(s.cfg.RoundDuration)
	s.deadline = &deadline
	round := s.round
	s.cancel = s.cfg.Timer.Start(s.cfg.RoundDuration, func() {
		s.ExpireRound(round)
	})
}

func (s *Session) stopTimerLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.deadline = nil
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:    s.version,
		Phase:      s.phase,
		Round:      s.round,
		MaxRounds:  s.cfg.MaxRounds,
		TotalScore: s.totalScore,
		Location:   s.current,
		UsedIDs:    append([]string(nil), s.usedOrder...),
		History:    append([]Outcome(nil), s.history...),
	}
	if s.marker != nil {
		m := *s.marker
		snap.Marker = &m
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	if s.deadline != nil {
		d := *s.deadline
		snap.Deadline = &d
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(snap)
	}
}
