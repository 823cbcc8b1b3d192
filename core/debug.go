package core

import "io"

// LineLogger writes whole lines to a blocking byte sink.
// Every line is terminated with '\n' then '\r'.
type LineLogger struct {
	sink io.ByteWriter

	// Failed counts lines that the sink did not fully accept
	Failed uint32
}

// NewLineLogger creates a logger on top of sink
func NewLineLogger(sink io.ByteWriter) *LineLogger {
	return &LineLogger{sink: sink}
}

// Println emits s followed by the line terminator. It stops at the first
// byte the sink rejects.
func (l *LineLogger) Println(s string) error {
	for i := 0; i < len(s); i++ {
		if err := l.sink.WriteByte(s[i]); err != nil {
			l.Failed++
			return err
		}
	}
	return l.terminate()
}

// Write emits line followed by the terminator without copying it, so a
// caller can reuse one buffer for every line
func (l *LineLogger) Write(line []byte) error {
	for _, c := range line {
		if err := l.sink.WriteByte(c); err != nil {
			l.Failed++
			return err
		}
	}
	return l.terminate()
}

func (l *LineLogger) terminate() error {
	if err := l.sink.WriteByte('\n'); err != nil {
		l.Failed++
		return err
	}
	if err := l.sink.WriteByte('\r'); err != nil {
		l.Failed++
		return err
	}
	return nil
}
