package core

import (
	"errors"
	"time"
)

// Timer frequencies for common MCUs
const (
	TimerFreq = 1000000 // 1MHz microsecond counter (RP2040 TIMER, host monotonic clock)
)

// ElapsedTimer is the periodic timer boundary: configure a rate once, then
// receive a callback every period.
type ElapsedTimer interface {
	Configure(hz uint32) error
	OnElapsed(callback func())
}

var (
	ErrBadFrequency  = errors.New("timer frequency must be between 1Hz and TimerFreq")
	ErrNotConfigured = errors.New("timer not configured")
)

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// TimerFromDuration converts a duration to timer ticks. The result wraps
// modulo 2^32 the same way the hardware counter does.
func TimerFromDuration(d time.Duration) uint32 {
	return uint32(uint64(d/time.Microsecond) * TimerFreq / 1000000)
}

// PeriodicTimer fires a callback at a fixed rate from a Scheduler.
// Periods that pass while the callback is still running, or while the
// scheduler is not dispatched, are dropped rather than replayed.
type PeriodicTimer struct {
	sched    *Scheduler
	period   uint32
	callback func()
	timer    Timer

	// Missed counts dropped periods
	Missed uint32
}

// NewPeriodicTimer creates a timer on sched
func NewPeriodicTimer(sched *Scheduler) *PeriodicTimer {
	return &PeriodicTimer{sched: sched}
}

// Configure sets the callback rate in Hz
func (p *PeriodicTimer) Configure(hz uint32) error {
	if hz == 0 || hz > TimerFreq {
		return ErrBadFrequency
	}
	p.period = TimerFreq / hz
	return nil
}

// Period returns the configured period in timer ticks
func (p *PeriodicTimer) Period() uint32 {
	return p.period
}

// OnElapsed registers callback and arms the timer one period from now.
// Configure must be called first.
func (p *PeriodicTimer) OnElapsed(callback func()) {
	if p.period == 0 {
		panic(ErrNotConfigured)
	}
	p.callback = callback
	p.timer.Handler = p.elapsed
	p.timer.WakeTime = p.sched.Now() + p.period
	p.sched.ScheduleTimer(&p.timer)
}

// elapsed runs with the scheduler's critical section held
func (p *PeriodicTimer) elapsed(t *Timer) uint8 {
	p.callback()

	next := t.WakeTime + p.period
	now := p.sched.currentTime
	if !timerIsBefore(now, next) {
		skipped := (now-next)/p.period + 1
		next += skipped * p.period
		p.Missed += skipped
	}
	t.WakeTime = next
	return SF_RESCHEDULE
}
