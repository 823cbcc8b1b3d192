// Command rtcclock-mon reads the clock's serial log and prints the decoded
// register values.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"rtcclock/core"
	"rtcclock/host/monitor"
	"rtcclock/host/serial"
)

var (
	device = flag.String("device", "/dev/ttyUSB0", "Serial device path (- for stdin)")
	baud   = flag.Int("baud", 115200, "Baud rate")
	strict = flag.Bool("strict", false, "Exit non-zero on a corrupted status line or a fault")
)

func main() {
	flag.Parse()
	code := run()
	glog.Flush()
	os.Exit(code)
}

func run() int {
	var in io.Reader = os.Stdin
	if *device != "-" {
		cfg := serial.DefaultConfig(*device)
		cfg.Baud = *baud
		cfg.ReadTimeout = 0
		port, err := serial.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer func() {
			if err := port.Close(); err != nil {
				glog.Errorf("closing %s: %v", *device, err)
			}
		}()
		in = port
	}

	m := monitor.New(in)
	for {
		ev, err := m.Next()
		if err == io.EOF {
			return 0
		}
		if errors.Is(err, monitor.ErrMalformed) {
			glog.Warningf("%v", err)
			continue
		}
		if err != nil {
			glog.Errorf("read failed: %v", err)
			return 1
		}

		switch ev.Kind {
		case monitor.EventStatus:
			ts := ev.Timestamp
			fmt.Printf("%04d-%02d-%02d %02d:%02d:%02d wd=%d (tr=0x%08X dr=0x%08X)\n",
				core.EpochYear+int(ts.YearOffset), int(ts.Month)+1, ts.Day, ts.Hour, ts.Minute, ts.Second,
				ts.Weekday, ev.TR, ev.DR)
			if !ev.Consistent {
				glog.Warningf("corrupted status line: %q", ev.Line)
				if *strict {
					return 1
				}
			}
		case monitor.EventElapsed:
			fmt.Printf("elapsed: %d s\n", ev.Seconds)
		case monitor.EventStart:
			fmt.Println("clock started")
		case monitor.EventFault:
			fmt.Println("clock FAULTED")
			if *strict {
				return 1
			}
		default:
			glog.V(1).Infof("unrecognized line %q", ev.Line)
		}
	}
}
