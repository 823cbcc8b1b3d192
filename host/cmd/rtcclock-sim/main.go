// Command rtcclock-sim runs the tick clock on the host against a simulated
// RTC and writes its serial log to stdout or a serial device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"rtcclock/config"
	"rtcclock/core"
	"rtcclock/host/runner"
	"rtcclock/host/serial"
	"rtcclock/rtc"
)

var (
	configFile = flag.String("config", "", "JSON config file")
	device     = flag.String("device", "", "Serial device for the log (default stdout)")
	baud       = flag.Int("baud", 115200, "Baud rate")
	rtcKind    = flag.String("rtc", config.RTCSim, "RTC backend: sim or ds3231")
	tps        = flag.Uint("tps", core.DefaultTicksPerSecond, "Ticks per second")
	start      = flag.String("start", config.StartExample, "Initial time: example, now, keep or RFC 3339")
	duration   = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
)

func main() {
	flag.Parse()
	code := run()
	glog.Flush()
	os.Exit(code)
}

// run returns the process exit status so that deferred cleanup always runs
func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	initial, err := cfg.StartTimestamp(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	sink, err := openSink(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := sink.Close(); err != nil {
			glog.Errorf("closing log output: %v", err)
		}
	}()

	sched := core.NewScheduler()
	timer := core.NewPeriodicTimer(sched)
	log := core.NewLineLogger(sink)
	driver := core.NewTickDriver(newRTC(cfg), log, cfg.TicksPerSecond)
	if err := core.Boot(driver, timer, initial); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to start clock: %v\n", err)
		return 1
	}
	glog.Infof("clock running: rtc=%s tps=%d", cfg.RTC, cfg.TicksPerSecond)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	r := runner.New(sched, timer, driver, time.Duration(cfg.PollMicros)*time.Microsecond)
	err = r.Run(ctx)

	switch {
	case errors.Is(err, core.ErrHalted):
		glog.Error("clock faulted")
		return 1
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c := driver.Counter()
		glog.Infof("stopped after %d s, %d dropped ticks", c.Seconds, timer.Missed)
	case err != nil:
		glog.Errorf("run failed: %v", err)
		return 1
	}
	if log.Failed != 0 {
		glog.Warningf("%d log lines not fully written", log.Failed)
	}
	return 0
}

// loadConfig reads the config file, if any, and applies explicit flags on top
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "device":
			cfg.Device = *device
		case "baud":
			cfg.Baud = *baud
		case "rtc":
			cfg.RTC = *rtcKind
		case "tps":
			flagErr = cfg.SetTicksPerSecond(uint64(*tps))
		case "start":
			cfg.Start = *start
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// logOutput is where the clock's lines go
type logOutput interface {
	io.ByteWriter
	io.Closer
}

func openSink(cfg *config.Config) (logOutput, error) {
	if cfg.Device == "" {
		return serial.NewSink(os.Stdout), nil
	}

	sc := serial.DefaultConfig(cfg.Device)
	sc.Baud = cfg.Baud
	port, err := serial.Open(sc)
	if err != nil {
		return nil, err
	}
	glog.Infof("logging to %s at %d baud", cfg.Device, cfg.Baud)
	return port, nil
}

func newRTC(cfg *config.Config) core.RTC {
	if cfg.RTC == config.RTCDS3231 {
		return rtc.NewDS3231(rtc.NewEmulatedDS3231(nil))
	}
	return rtc.NewSim(nil)
}
