package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// MockRTC is a test implementation of RTC
type MockRTC struct {
	tr, dr    uint32
	reads     int
	panicRead bool
}

func (m *MockRTC) ReadTime() uint32 {
	if m.panicRead {
		panic("bus fault")
	}
	m.reads++
	return m.tr
}

func (m *MockRTC) ReadDate() uint32 {
	return m.dr
}

func (m *MockRTC) WriteTimeDate(tr, dr uint32) {
	m.tr, m.dr = tr, dr
}

// lines splits captured sink output on the "\n\r" terminator
func lines(buf *bytes.Buffer) []string {
	out := strings.Split(buf.String(), "\n\r")
	return out[:len(out)-1]
}

func newTestDriver(tps uint32) (*TickDriver, *MockRTC, *bytes.Buffer) {
	rtc := &MockRTC{}
	WriteTimestamp(rtc, ExampleTimestamp)
	var buf bytes.Buffer
	d := NewTickDriver(rtc, NewLineLogger(&buf), tps)
	d.setState(StateRunning)
	return d, rtc, &buf
}

func TestTickRollover(t *testing.T) {
	d, _, buf := newTestDriver(10)

	for i := 0; i < 9; i++ {
		d.Tick()
	}
	c := d.Counter()
	if c.Seconds != 0 || c.Ticks != 9 {
		t.Errorf("After 9 ticks expected seconds=0 ticks=9, got %+v", c)
	}

	d.Tick()
	c = d.Counter()
	if c.Seconds != 1 || c.Ticks != 0 {
		t.Errorf("After 10 ticks expected seconds=1 ticks=0, got %+v", c)
	}

	got := lines(buf)
	if len(got) != 11 {
		t.Fatalf("Expected 10 status lines and 1 elapsed line, got %d: %q", len(got), got)
	}
	if got[10] != "elapsed seconds=0" {
		t.Errorf("Expected elapsed line with the pre-increment count, got %q", got[10])
	}
}

func TestTickManySeconds(t *testing.T) {
	d, _, buf := newTestDriver(3)

	for i := 0; i < 3*5+2; i++ {
		d.Tick()
	}

	c := d.Counter()
	if c.Seconds != 5 || c.Ticks != 2 {
		t.Errorf("Expected seconds=5 ticks=2, got %+v", c)
	}
	if n := strings.Count(buf.String(), "elapsed seconds="); n != 5 {
		t.Errorf("Expected 5 elapsed lines, got %d", n)
	}
	if !strings.Contains(buf.String(), "elapsed seconds=4\n\r") {
		t.Error("Missing elapsed line for second 4")
	}
}

func TestTickStatusLine(t *testing.T) {
	d, rtc, buf := newTestDriver(10)

	d.Tick()

	want := "tr=0x00193015 dr=0x00182817 18-08-17 wd=1 19:30:15"
	if got := lines(buf); len(got) != 1 || got[0] != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if rtc.reads != 1 {
		t.Errorf("Expected one register snapshot per tick, got %d", rtc.reads)
	}
}

func TestTickIgnoredWhenIdle(t *testing.T) {
	rtc := &MockRTC{}
	var buf bytes.Buffer
	d := NewTickDriver(rtc, NewLineLogger(&buf), 10)

	d.Tick()

	if buf.Len() != 0 || rtc.reads != 0 {
		t.Error("Idle driver must not read the RTC or log")
	}
}

func TestDefaultTicksPerSecond(t *testing.T) {
	d := NewTickDriver(&MockRTC{}, NewLineLogger(&bytes.Buffer{}), 0)
	if d.TicksPerSecond() != DefaultTicksPerSecond {
		t.Errorf("Expected %d, got %d", DefaultTicksPerSecond, d.TicksPerSecond())
	}
}

func TestFaultHalts(t *testing.T) {
	d, rtc, buf := newTestDriver(10)
	d.Tick()
	buf.Reset()

	d.Fault()

	if got := lines(buf); len(got) != 1 || got[0] != FaultMessage {
		t.Fatalf("Expected exactly the fault line, got %q", got)
	}
	if d.State() != StateHalted {
		t.Errorf("Expected halted state, got %s", d.State())
	}
	if !errors.Is(d.Err(), ErrHalted) {
		t.Errorf("Expected ErrHalted, got %v", d.Err())
	}

	before := d.Counter()
	reads := rtc.reads
	for i := 0; i < 20; i++ {
		d.Tick()
	}
	d.Fault()

	if got := lines(buf); len(got) != 1 {
		t.Errorf("No output allowed after the fault line, got %q", got)
	}
	if d.Counter() != before || rtc.reads != reads {
		t.Error("Ticks were processed after the fault")
	}
}

func TestPanicInTickFaults(t *testing.T) {
	d, rtc, buf := newTestDriver(10)
	rtc.panicRead = true

	d.Tick()

	if d.State() != StateHalted {
		t.Fatalf("Expected a panic in the callback to halt the driver, got %s", d.State())
	}
	if got := lines(buf); len(got) != 1 || got[0] != FaultMessage {
		t.Errorf("Expected only the fault line, got %q", got)
	}
}

type failingSink struct {
	accept int
}

func (f *failingSink) WriteByte(c byte) error {
	if f.accept == 0 {
		return errors.New("tx stalled")
	}
	f.accept--
	return nil
}

func TestTickSurvivesSinkErrors(t *testing.T) {
	sink := &failingSink{accept: 5}
	log := NewLineLogger(sink)
	d := NewTickDriver(&MockRTC{}, log, 2)
	d.setState(StateRunning)

	d.Tick()
	d.Tick()

	if c := d.Counter(); c.Seconds != 1 {
		t.Errorf("Counting must continue when the sink fails, got %+v", c)
	}
	if log.Failed != 3 {
		t.Errorf("Expected 3 failed lines, got %d", log.Failed)
	}
}

func TestStartArmsTimer(t *testing.T) {
	sched := NewScheduler()
	timer := NewPeriodicTimer(sched)
	d, _, _ := newTestDriver(10)
	d.setState(StateIdle)

	if err := d.Start(timer); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if d.State() != StateRunning {
		t.Errorf("Expected running, got %s", d.State())
	}
	if timer.Period() != TimerFreq/10 {
		t.Errorf("Expected period %d, got %d", TimerFreq/10, timer.Period())
	}

	for i := uint32(1); i <= 10; i++ {
		sched.Advance(i * timer.Period())
	}
	if c := d.Counter(); c.Seconds != 1 || c.Ticks != 0 {
		t.Errorf("Expected one second after ten periods, got %+v", c)
	}

	if err := d.Start(timer); !errors.Is(err, ErrNotIdle) {
		t.Errorf("Expected ErrNotIdle on second Start, got %v", err)
	}
}

func TestHeartbeat(t *testing.T) {
	d, _, _ := newTestDriver(10)
	var beats int
	d.SetHeartbeat(func() { beats++ })

	for i := 0; i < 3; i++ {
		d.Tick()
	}
	d.Fault()
	d.Tick()

	if beats != 3 {
		t.Errorf("Expected 3 heartbeats, got %d", beats)
	}
}

// discardSink accepts and drops every byte
type discardSink struct {
	n int
}

func (d *discardSink) WriteByte(c byte) error {
	d.n++
	return nil
}

func TestTickDoesNotAllocate(t *testing.T) {
	rtc := &MockRTC{}
	WriteTimestamp(rtc, ExampleTimestamp)
	sink := &discardSink{}
	d := NewTickDriver(rtc, NewLineLogger(sink), 10)
	d.setState(StateRunning)

	allocs := testing.AllocsPerRun(100, d.Tick)
	if allocs != 0 {
		t.Errorf("Expected no allocations per tick, got %v", allocs)
	}
	if sink.n == 0 {
		t.Error("Expected tick output")
	}
}
