package core

import (
	"bytes"
	"testing"
)

func TestBoot(t *testing.T) {
	rtc := &MockRTC{}
	var buf bytes.Buffer
	sched := NewScheduler()
	timer := NewPeriodicTimer(sched)

	driver := NewTickDriver(rtc, NewLineLogger(&buf), 10)
	if err := Boot(driver, timer, &ExampleTimestamp); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	if got := lines(&buf); len(got) != 1 || got[0] != StartMessage {
		t.Errorf("Expected only the start banner, got %q", got)
	}
	if tr, dr := Encode(ExampleTimestamp); rtc.tr != tr || rtc.dr != dr {
		t.Errorf("RTC not loaded: tr=0x%08X dr=0x%08X", rtc.tr, rtc.dr)
	}
	if driver.State() != StateRunning || sched.Pending() != 1 {
		t.Errorf("Expected running driver with one armed timer, got %s / %d", driver.State(), sched.Pending())
	}

	sched.Advance(timer.Period())
	if got := lines(&buf); len(got) != 2 {
		t.Errorf("Expected one status line after the first period, got %q", got)
	}
}

func TestBootKeepsRTC(t *testing.T) {
	rtc := &MockRTC{tr: 0x00120000, dr: 0x00240101}
	timer := NewPeriodicTimer(NewScheduler())

	driver := NewTickDriver(rtc, NewLineLogger(&bytes.Buffer{}), 1)
	if err := Boot(driver, timer, nil); err != nil {
		t.Fatal(err)
	}
	if rtc.tr != 0x00120000 || rtc.dr != 0x00240101 {
		t.Error("RTC overwritten without an initial timestamp")
	}
}

func TestBootBadRate(t *testing.T) {
	timer := NewPeriodicTimer(NewScheduler())
	driver := NewTickDriver(&MockRTC{}, NewLineLogger(&bytes.Buffer{}), TimerFreq+1)
	if err := Boot(driver, timer, nil); err != ErrBadFrequency {
		t.Errorf("Expected ErrBadFrequency, got %v", err)
	}
}
