package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by WakeTime and runs the ones that are due.
// Times are in clock ticks at TimerFreq and compare modulo 2^32.
type Scheduler struct {
	timerList   *Timer
	currentTime uint32
}

// NewScheduler creates an empty scheduler at time zero
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// timerIsBefore reports whether t1 is before t2, tolerating counter wraparound
func timerIsBefore(t1, t2 uint32) bool {
	return int32(t1-t2) < 0
}

// Now returns the scheduler's view of the current time
func (s *Scheduler) Now() uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return s.currentTime
}

// SetTime sets the current time (from the hardware counter or a test)
func (s *Scheduler) SetTime(ticks uint32) {
	state := disableInterrupts()
	s.currentTime = ticks
	restoreInterrupts(state)
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s.insertTimer(t)
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timerList == nil || timerIsBefore(t.WakeTime, s.timerList.WakeTime) {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && timerIsBefore(current.Next.WakeTime, t.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Pending reports how many timers are scheduled
func (s *Scheduler) Pending() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	n := 0
	for t := s.timerList; t != nil; t = t.Next {
		n++
	}
	return n
}

// Dispatch runs every timer whose WakeTime is not after the current time.
// A rescheduled timer whose new WakeTime is still due runs again in the
// same pass, so handlers must advance WakeTime past the current time.
func (s *Scheduler) Dispatch() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for s.timerList != nil && !timerIsBefore(s.currentTime, s.timerList.WakeTime) {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil

		result := timer.Handler(timer)

		if result == SF_RESCHEDULE {
			s.insertTimer(timer)
		}
	}
}

// Advance sets the current time and dispatches due timers
func (s *Scheduler) Advance(ticks uint32) {
	s.SetTime(ticks)
	s.Dispatch()
}
