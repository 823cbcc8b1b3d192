// Package runner is the hosted main loop: it feeds the scheduler from the
// process's monotonic clock the way firmware feeds it from a hardware timer.
package runner

import (
	"context"
	"time"

	"github.com/golang/glog"

	"rtcclock/core"
)

// Runner drives a scheduler and watches the tick driver for a halt
type Runner struct {
	Sched  *core.Scheduler
	Timer  *core.PeriodicTimer
	Driver *core.TickDriver

	// Interval between scheduler updates
	Interval time.Duration

	// Since returns the time elapsed since the runner started
	Since func(start time.Time) time.Duration
}

// New creates a runner polling every interval
func New(sched *core.Scheduler, timer *core.PeriodicTimer, driver *core.TickDriver, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &Runner{
		Sched:    sched,
		Timer:    timer,
		Driver:   driver,
		Interval: interval,
		Since:    time.Since,
	}
}

// Run loops until ctx is done or the driver halts. A halted driver yields
// core.ErrHalted.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	var missed uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Step(r.Since(start)); err != nil {
				return err
			}
			if r.Timer.Missed != missed {
				glog.Warningf("dropped %d tick(s)", r.Timer.Missed-missed)
				missed = r.Timer.Missed
			}
		}
	}
}

// Step advances the scheduler to elapsed and reports a halt
func (r *Runner) Step(elapsed time.Duration) error {
	r.Sched.Advance(core.TimerFromDuration(elapsed))
	if err := r.Driver.Err(); err != nil {
		c := r.Driver.Counter()
		glog.Errorf("clock halted at %d s + %d ticks (timer %d us)", c.Seconds, c.Ticks, core.TimerToUS(r.Sched.Now()))
		return err
	}
	if glog.V(2) {
		c := r.Driver.Counter()
		glog.Infof("t=%v seconds=%d ticks=%d", elapsed, c.Seconds, c.Ticks)
	}
	return nil
}
