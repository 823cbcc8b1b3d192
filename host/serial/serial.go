package serial

import (
	"bufio"
	"io"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the console UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the console line settings (115200 8N1)
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// Sink is a line-buffered byte sink for a terminal or pipe: bytes are
// batched and handed to the writer when a line terminator ('\r') arrives.
type Sink struct {
	buf *bufio.Writer
}

// NewSink creates a sink on top of w
func NewSink(w io.Writer) *Sink {
	return &Sink{buf: bufio.NewWriter(w)}
}

// WriteByte emits c, flushing at the end of each line
func (s *Sink) WriteByte(c byte) error {
	if err := s.buf.WriteByte(c); err != nil {
		return err
	}
	if c == '\r' {
		return s.buf.Flush()
	}
	return nil
}

// Close pushes out a trailing partial line. The writer stays open.
func (s *Sink) Close() error {
	return s.buf.Flush()
}
