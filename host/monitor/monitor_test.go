package monitor

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"rtcclock/core"
)

func TestMonitorDecodesDriverOutput(t *testing.T) {
	var buf bytes.Buffer
	log := core.NewLineLogger(&buf)

	timer := core.NewPeriodicTimer(core.NewScheduler())
	driver := core.NewTickDriver(staticRTC{}, log, 2)
	if err := core.Boot(driver, timer, nil); err != nil {
		t.Fatal(err)
	}
	driver.Tick()
	driver.Tick()
	driver.Fault()

	m := New(&buf)
	var kinds []EventKind
	for {
		ev, err := m.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		kinds = append(kinds, ev.Kind)

		if ev.Kind == EventStatus {
			if ev.Timestamp != core.ExampleTimestamp || !ev.Consistent {
				t.Errorf("Bad status decode: %+v", ev)
			}
		}
	}

	expected := []EventKind{EventStart, EventStatus, EventStatus, EventElapsed, EventFault}
	if len(kinds) != len(expected) {
		t.Fatalf("Expected events %v, got %v", expected, kinds)
	}
	for i := range expected {
		if kinds[i] != expected[i] {
			t.Errorf("Event %d: got %s, want %s", i, kinds[i], expected[i])
		}
	}
}

// staticRTC always reads the example timestamp
type staticRTC struct{}

func (staticRTC) ReadTime() uint32 {
	tr, _ := core.Encode(core.ExampleTimestamp)
	return tr
}

func (staticRTC) ReadDate() uint32 {
	_, dr := core.Encode(core.ExampleTimestamp)
	return dr
}

func (staticRTC) WriteTimeDate(tr, dr uint32) {}

func TestParseLineInconsistent(t *testing.T) {
	ev, err := ParseLine("tr=0x00193015 dr=0x00182817 18-08-17 wd=1 19:30:16")
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != EventStatus || ev.Consistent {
		t.Errorf("Expected inconsistent status event, got %+v", ev)
	}
}

func TestParseLineErrors(t *testing.T) {
	testCases := []string{
		"elapsed seconds=many",
		"tr=0xZZ dr=0x0",
		"tr=0x0",
		"tr=0x0 dr=nope",
	}

	for _, line := range testCases {
		if _, err := ParseLine(line); !errors.Is(err, ErrMalformed) {
			t.Errorf("ParseLine(%q): expected ErrMalformed, got %v", line, err)
		}
	}

	ev, err := ParseLine("garbage")
	if err != nil || ev.Kind != EventUnknown {
		t.Errorf("Expected unknown event without error, got %+v, %v", ev, err)
	}
}

func TestMonitorHandlesCRLF(t *testing.T) {
	m := New(strings.NewReader("elapsed seconds=7\r\nelapsed seconds=8\n\r"))

	for _, want := range []uint32{7, 8} {
		ev, err := m.Next()
		if err != nil {
			t.Fatal(err)
		}
		if ev.Kind != EventElapsed || ev.Seconds != want {
			t.Errorf("Expected elapsed %d, got %+v", want, ev)
		}
	}
	if _, err := m.Next(); err != io.EOF {
		t.Errorf("Expected EOF, got %v", err)
	}
}
