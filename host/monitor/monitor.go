// Package monitor reads the clock's serial log on the host and decodes it.
package monitor

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rtcclock/core"
)

// ErrMalformed marks a recognized line whose fields do not parse
var ErrMalformed = errors.New("malformed log line")

// EventKind classifies a log line
type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventStart
	EventStatus
	EventElapsed
	EventFault
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStatus:
		return "status"
	case EventElapsed:
		return "elapsed"
	case EventFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Event is one decoded log line
type Event struct {
	Kind EventKind
	Line string

	// Status lines
	TR, DR    uint32
	Timestamp core.Timestamp

	// Consistent is false when the printed fields disagree with the
	// registers, i.e. the line was corrupted in transit
	Consistent bool

	// Elapsed lines
	Seconds uint32
}

// ParseLine decodes one log line without its terminator
func ParseLine(line string) (Event, error) {
	ev := Event{Line: line}

	switch {
	case line == core.StartMessage:
		ev.Kind = EventStart
		return ev, nil

	case line == core.FaultMessage:
		ev.Kind = EventFault
		return ev, nil

	case strings.HasPrefix(line, "elapsed seconds="):
		n, err := strconv.ParseUint(strings.TrimPrefix(line, "elapsed seconds="), 10, 32)
		if err != nil {
			return ev, fmt.Errorf("%w: elapsed line %q: %w", ErrMalformed, line, err)
		}
		ev.Kind = EventElapsed
		ev.Seconds = uint32(n)
		return ev, nil

	case strings.HasPrefix(line, "tr="):
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[1], "dr=") {
			return ev, fmt.Errorf("%w: status line %q", ErrMalformed, line)
		}
		tr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "tr="), 0, 32)
		if err != nil {
			return ev, fmt.Errorf("%w: TIME register in %q: %w", ErrMalformed, line, err)
		}
		dr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "dr="), 0, 32)
		if err != nil {
			return ev, fmt.Errorf("%w: DATE register in %q: %w", ErrMalformed, line, err)
		}
		ev.Kind = EventStatus
		ev.TR, ev.DR = uint32(tr), uint32(dr)
		ev.Timestamp = core.Decode(ev.TR, ev.DR)
		ev.Consistent = string(core.FormatStatus(nil, ev.TR, ev.DR, ev.Timestamp)) == line
		return ev, nil
	}

	return ev, nil
}

// Monitor splits a byte stream into log lines
type Monitor struct {
	scanner *bufio.Scanner
}

// New creates a monitor reading r
func New(r io.Reader) *Monitor {
	scanner := bufio.NewScanner(r)
	scanner.Split(scanLines)
	return &Monitor{scanner: scanner}
}

// Next returns the next event. It returns io.EOF at the end of the stream.
// Lines that fail to parse are returned as EventUnknown with the error.
func (m *Monitor) Next() (Event, error) {
	for m.scanner.Scan() {
		line := m.scanner.Text()
		if line == "" {
			continue
		}
		return ParseLine(line)
	}
	if err := m.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

// scanLines splits on '\n' and drops the '\r' that the firmware sends
// after it (and any that a terminal adds before it)
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = bufio.ScanLines(data, atEOF)
	return advance, bytes.Trim(token, "\r"), err
}
