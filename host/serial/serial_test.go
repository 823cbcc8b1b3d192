package serial

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"rtcclock/core"
)

// countingWriter records how many Write calls reach the device
type countingWriter struct {
	bytes.Buffer
	writes int
	short  bool
	closed bool
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.writes++
	if c.short {
		return 0, nil
	}
	return c.Buffer.Write(p)
}

func (c *countingWriter) Close() error {
	c.closed = true
	return nil
}

// failingWriter rejects every write
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("pipe closed")
}

func TestPortWritesEachByte(t *testing.T) {
	dev := &countingWriter{}
	port := newPort(dev)
	log := core.NewLineLogger(port)

	if err := log.Println("ok"); err != nil {
		t.Fatalf("Println failed: %v", err)
	}

	if dev.String() != "ok\n\r" {
		t.Errorf("Expected %q, got %q", "ok\n\r", dev.String())
	}
	if dev.writes != 4 {
		t.Errorf("Expected one device write per byte, got %d", dev.writes)
	}

	if err := port.Close(); err != nil || !dev.closed {
		t.Errorf("Expected device closed, err=%v", err)
	}
}

func TestPortShortWrite(t *testing.T) {
	port := newPort(&countingWriter{short: true})

	if err := port.WriteByte('x'); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Expected io.ErrShortWrite, got %v", err)
	}
}

func TestSinkFlushesPerLine(t *testing.T) {
	w := &countingWriter{}
	sink := NewSink(w)

	for _, c := range []byte("tick\n") {
		_ = sink.WriteByte(c)
	}
	if w.Len() != 0 {
		t.Errorf("Expected nothing written before the terminator, got %q", w.String())
	}

	_ = sink.WriteByte('\r')
	if w.String() != "tick\n\r" || w.writes != 1 {
		t.Errorf("Expected one flush of the whole line, got %q in %d writes", w.String(), w.writes)
	}
}

func TestSinkCloseFlushesPartialLine(t *testing.T) {
	w := &countingWriter{}
	sink := NewSink(w)

	for _, c := range []byte("elapsed") {
		_ = sink.WriteByte(c)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if w.String() != "elapsed" {
		t.Errorf("Expected partial line on close, got %q", w.String())
	}
	if w.closed {
		t.Error("Sink must not close the underlying writer")
	}
}

func TestSinkCloseReportsError(t *testing.T) {
	sink := NewSink(failingWriter{})
	_ = sink.WriteByte('x')

	if err := sink.Close(); err == nil {
		t.Error("Expected flush error from Close")
	}
}

func TestOpenRejectsBadConfig(t *testing.T) {
	if _, err := Open(nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice for nil config, got %v", err)
	}
	if _, err := Open(DefaultConfig("")); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Expected ErrNoDevice for empty device, got %v", err)
	}

	cfg := DefaultConfig("/dev/ttyUSB0")
	cfg.Baud = 0
	if _, err := Open(cfg); err == nil {
		t.Error("Expected error for zero baud")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Device != "/dev/ttyUSB0" || cfg.Baud != 115200 {
		t.Errorf("Unexpected default config: %+v", cfg)
	}
}
