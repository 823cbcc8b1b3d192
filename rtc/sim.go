package rtc

import (
	"time"

	"rtcclock/core"
)

// Sim is a hosted RTC that runs from a wall clock. Reads encode the
// current time; writes shift the clock's offset.
type Sim struct {
	now    func() time.Time
	offset time.Duration
	date   uint32
}

// NewSim creates a simulated RTC on now, or on time.Now when now is nil
func NewSim(now func() time.Time) *Sim {
	if now == nil {
		now = time.Now
	}
	return &Sim{now: now}
}

// Now returns the simulated wall time
func (s *Sim) Now() time.Time {
	return s.now().Add(s.offset).UTC()
}

// ReadTime encodes the current time and latches the matching date
func (s *Sim) ReadTime() uint32 {
	tr, dr := core.Encode(core.FromTime(s.Now()))
	s.date = dr
	return tr
}

// ReadDate returns the date latched by the last ReadTime
func (s *Sim) ReadDate() uint32 {
	return s.date
}

// WriteTimeDate sets the clock to the decoded register values
func (s *Sim) WriteTimeDate(tr, dr uint32) {
	s.offset = core.Decode(tr, dr).Time().Sub(s.now())
	s.date = dr
}
