package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

var ErrNoDevice = errors.New("serial: no device configured")

// Port is a console UART on the host. Every WriteByte goes to the device
// before it returns, the same blocking contract the firmware's UART has.
type Port struct {
	rw  io.ReadWriteCloser
	one [1]byte
}

// Open opens cfg.Device as an 8N1 line
func Open(cfg *Config) (*Port, error) {
	if cfg == nil || cfg.Device == "" {
		return nil, ErrNoDevice
	}
	if cfg.Baud <= 0 {
		return nil, fmt.Errorf("serial: invalid baud rate %d for %s", cfg.Baud, cfg.Device)
	}

	sp, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	return newPort(sp), nil
}

func newPort(rw io.ReadWriteCloser) *Port {
	return &Port{rw: rw}
}

// WriteByte transmits c
func (p *Port) WriteByte(c byte) error {
	p.one[0] = c
	n, err := p.rw.Write(p.one[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	return err
}

// Read receives log bytes from the device
func (p *Port) Read(b []byte) (int, error) {
	return p.rw.Read(b)
}

// Close releases the device
func (p *Port) Close() error {
	return p.rw.Close()
}
