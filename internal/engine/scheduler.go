package engine

import (
	"time"

	"github.com/coder/quartz"
)

// Clock is the time source the engine schedules against. Production code
// passes quartz.NewReal(); tests pass quartz.NewMock(t) and advance it
// explicitly so think-delay and tribute-timeout behavior is asserted
// without sleeping in real time.
type Clock = quartz.Clock

// Guard is a small comparable value captured when a callback is
// scheduled. When the callback fires, the scheduler re-checks the guard
// against the engine's current state and silently drops the callback if
// it no longer matches: starting a new deal invalidates all pending
// callbacks from the previous deal.
type Guard struct {
	DealIndex int
	Phase     Phase
}

// Scheduler wraps a Clock and exposes a schedule-after primitive,
// guarding every callback against stale deal/phase state.
type Scheduler struct {
	clock   Clock
	current func() Guard
}

// NewScheduler builds a Scheduler whose callbacks are valid only while
// currentGuard() returns a Guard equal to the one captured at scheduling
// time.
func NewScheduler(clock Clock, currentGuard func() Guard) *Scheduler {
	return &Scheduler{clock: clock, current: currentGuard}
}

// After schedules fn to run after d, guarded by guard: if the engine's
// current guard no longer matches when the timer fires, fn is never
// called.
func (s *Scheduler) After(guard Guard, d time.Duration, fn func()) {
	s.clock.AfterFunc(d, func() {
		if s.current() != guard {
			return
		}
		fn()
	})
}
