// Package roundtimer provides the wall-clock RoundTimer used by the server.
package roundtimer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer starts one-shot round countdowns on a clockwork.Clock. Production
// code passes clockwork.NewRealClock(); tests pass a FakeClock.
type Timer struct {
	clock clockwork.Clock
}

func New(clock clockwork.Clock) *Timer {
	return &Timer{clock: clock}
}

// Start arms a countdown of d. The returned cancel is idempotent; once it
// returns, onExpire will not start unless it already had.
func (t *Timer) Start(d time.Duration, onExpire func()) func() {
	var (
		mu       sync.Mutex
		canceled bool
	)
	timer := t.clock.AfterFunc(d, func() {
		mu.Lock()
		stop := canceled
		canceled = true
		mu.Unlock()
		if stop {
			return
		}
		onExpire()
	})

	return func() {
		mu.Lock()
		canceled = true
		mu.Unlock()
		timer.Stop()
	}
}

func (t *Timer) Now() time.Time { return t.clock.Now() }
