package machine

import (
	"context"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Scheduler drives a CPU on two independent clocks: instructions at the
// clock speed and timer decrements at the timer rate. Both run on virtual
// deadlines, so how much wall time a host hands to Advance does not change
// how many of each event happen.
type Scheduler struct {
	cpu *CPU

	instrPeriod time.Duration
	timerPeriod time.Duration

	now       time.Duration
	nextInstr time.Duration
	nextTimer time.Duration
}

// NewScheduler runs cpu at clockHz instructions and timerHz timer ticks per
// second. Rates above one per nanosecond run at one per nanosecond and
// non-positive rates at one per second.
func NewScheduler(cpu *CPU, clockHz, timerHz int) *Scheduler {
	s := &Scheduler{
		cpu:         cpu,
		instrPeriod: period(clockHz),
		timerPeriod: period(timerHz),
	}
	s.nextInstr = s.instrPeriod
	s.nextTimer = s.timerPeriod
	return s
}

// period is the time between events at hz, at least one nanosecond so the
// deadlines always move forward.
func period(hz int) time.Duration {
	if hz <= 0 {
		return time.Second
	}
	return max(time.Second/time.Duration(hz), time.Nanosecond)
}

// Advance moves virtual time forward by elapsed and fires every instruction
// and timer tick that falls due, in deadline order. It stops at the first
// fault.
func (s *Scheduler) Advance(elapsed time.Duration) error {
	target := s.now + elapsed
	for {
		next := min(s.nextInstr, s.nextTimer)
		if next > target {
			break
		}
		s.now = next
		if s.nextTimer == next {
			s.cpu.TickTimers()
			s.nextTimer += s.timerPeriod
		}
		if s.nextInstr == next {
			s.nextInstr += s.instrPeriod
			if err := s.cpu.Step(); err != nil {
				return err
			}
		}
	}
	s.now = target
	return nil
}

// Run advances the scheduler by the wall time measured every interval until
// ctx is done or the machine faults. onFrame, if set, runs after each
// advance.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration, onFrame func()) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			elapsed := now.Sub(last)
			last = now
			// a stalled host must not replay seconds of backlog at once
			if elapsed > 10*interval {
				s.cpu.logger.Warn("Host loop stalled", log.String("elapsed", elapsed.String()))
				elapsed = 10 * interval
			}
			if err := s.Advance(elapsed); err != nil {
				return err
			}
			if onFrame != nil {
				onFrame()
			}
		}
	}
}
