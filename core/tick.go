package core

import "errors"

// DefaultTicksPerSecond is the tick rate the firmware targets are built with
const DefaultTicksPerSecond = 10

// Fixed log lines
const (
	StartMessage = "----start----"
	FaultMessage = "---- fatal fault, halted ----"
)

// DriverState is the lifecycle state of a TickDriver
type DriverState uint8

const (
	StateIdle DriverState = iota
	StateRunning
	StateHalted
)

func (s DriverState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

var (
	ErrNotIdle = errors.New("tick driver already started")
	ErrHalted  = errors.New("tick driver halted after fault")
)

// TickCounter holds the ticks since the last second rollover and the
// elapsed seconds
type TickCounter struct {
	Ticks   uint32
	Seconds uint32
}

// TickDriver is the periodic clock callback. It owns all tick state, which
// is only mutated from Tick and Fault.
type TickDriver struct {
	rtc            RTC
	log            *LineLogger
	ticksPerSecond uint32

	state     DriverState
	counter   TickCounter
	line      []byte
	heartbeat func()
}

// NewTickDriver creates an idle driver reading rtc and logging to log.
// A ticksPerSecond of zero selects DefaultTicksPerSecond.
func NewTickDriver(rtc RTC, log *LineLogger, ticksPerSecond uint32) *TickDriver {
	if ticksPerSecond == 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	return &TickDriver{
		rtc:            rtc,
		log:            log,
		ticksPerSecond: ticksPerSecond,
		line:           make([]byte, 0, 96),
	}
}

// TicksPerSecond returns the configured tick rate
func (d *TickDriver) TicksPerSecond() uint32 {
	return d.ticksPerSecond
}

// SetHeartbeat registers fn to run at the end of every tick, typically to
// toggle a status LED. Must be called before Start.
func (d *TickDriver) SetHeartbeat(fn func()) {
	d.heartbeat = fn
}

// Start arms timer at the tick rate and moves the driver to running.
// It can only be called once.
func (d *TickDriver) Start(timer ElapsedTimer) error {
	if d.State() != StateIdle {
		return ErrNotIdle
	}
	if err := timer.Configure(d.ticksPerSecond); err != nil {
		return err
	}
	d.setState(StateRunning)
	timer.OnElapsed(d.Tick)
	return nil
}

// State returns the current lifecycle state
func (d *TickDriver) State() DriverState {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return d.state
}

func (d *TickDriver) setState(s DriverState) {
	state := disableInterrupts()
	d.state = s
	restoreInterrupts(state)
}

// Counter returns a consistent snapshot of the tick counter
func (d *TickDriver) Counter() TickCounter {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return d.counter
}

// Tick is the timer callback. It logs the current RTC reading and, once
// per ticksPerSecond calls, the elapsed seconds. It does nothing unless
// the driver is running. A panic inside Tick halts the driver.
func (d *TickDriver) Tick() {
	if d.state != StateRunning {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.Fault()
		}
	}()

	tr, dr, ts := ReadTimestamp(d.rtc)
	d.line = FormatStatus(d.line[:0], tr, dr, ts)
	_ = d.log.Write(d.line)

	d.counter.Ticks++
	if d.counter.Ticks >= d.ticksPerSecond {
		d.line = FormatElapsed(d.line[:0], d.counter.Seconds)
		_ = d.log.Write(d.line)
		d.counter.Seconds++
		d.counter.Ticks = 0
	}

	if d.heartbeat != nil {
		d.heartbeat()
	}
}

// Fault is the fatal handler: it emits FaultMessage once and halts the
// driver for good. Later calls and ticks are ignored.
func (d *TickDriver) Fault() {
	state := disableInterrupts()
	if d.state == StateHalted {
		restoreInterrupts(state)
		return
	}
	d.state = StateHalted
	restoreInterrupts(state)

	_ = d.log.Println(FaultMessage)
}

// Err returns ErrHalted once the driver has faulted
func (d *TickDriver) Err() error {
	if d.State() == StateHalted {
		return ErrHalted
	}
	return nil
}
