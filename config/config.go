// Package config loads the host-side clock configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rtcclock/core"
)

// RTC backends
const (
	RTCSim    = "sim"
	RTCDS3231 = "ds3231"
)

// Start time selectors; anything else must be an RFC 3339 timestamp
const (
	StartExample = "example"
	StartNow     = "now"
	StartKeep    = "keep"
)

// Config is the host clock configuration
type Config struct {
	TicksPerSecond uint32 `json:"ticks_per_second"`
	RTC            string `json:"rtc"`
	Device         string `json:"device"` // empty writes to stdout
	Baud           int    `json:"baud"`
	Start          string `json:"start"`
	PollMicros     uint32 `json:"poll_us"` // main loop period
}

// LoadConfig parses a JSON configuration and applies defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads and parses the configuration file at path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := LoadConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used without a config file
func DefaultConfig() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.TicksPerSecond == 0 {
		config.TicksPerSecond = core.DefaultTicksPerSecond
	}
	if config.RTC == "" {
		config.RTC = RTCSim
	}
	if config.Baud == 0 {
		config.Baud = 115200
	}
	if config.Start == "" {
		config.Start = StartExample
	}
	if config.PollMicros == 0 {
		config.PollMicros = 1000
	}
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if err := checkTicksPerSecond(uint64(c.TicksPerSecond)); err != nil {
		return err
	}
	if c.PollMicros > core.TimerFreq/c.TicksPerSecond {
		return fmt.Errorf("poll_us %d longer than the tick period", c.PollMicros)
	}
	switch c.RTC {
	case RTCSim, RTCDS3231:
	default:
		return fmt.Errorf("unknown rtc %q (want %q or %q)", c.RTC, RTCSim, RTCDS3231)
	}
	if _, err := c.StartTimestamp(time.Time{}); err != nil {
		return err
	}
	return nil
}

// SetTicksPerSecond sets the tick rate from a wider value, such as a
// command line flag, without truncating it
func (c *Config) SetTicksPerSecond(tps uint64) error {
	if err := checkTicksPerSecond(tps); err != nil {
		return err
	}
	c.TicksPerSecond = uint32(tps)
	return nil
}

func checkTicksPerSecond(tps uint64) error {
	if tps == 0 || tps > core.TimerFreq {
		return fmt.Errorf("ticks_per_second %d outside 1-%d", tps, core.TimerFreq)
	}
	return nil
}

// StartTimestamp resolves Start against now. It returns nil when the RTC
// should keep its current time.
func (c *Config) StartTimestamp(now time.Time) (*core.Timestamp, error) {
	var t time.Time
	switch c.Start {
	case StartKeep:
		return nil, nil
	case StartExample, "":
		ts := core.ExampleTimestamp
		return &ts, nil
	case StartNow:
		t = now.UTC()
	default:
		parsed, err := time.Parse(time.RFC3339, c.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start %q: %w", c.Start, err)
		}
		t = parsed.UTC()
		if t.Year() < core.EpochYear || t.Year() > core.EpochYear+99 {
			return nil, fmt.Errorf("start %q outside %d-%d", c.Start, core.EpochYear, core.EpochYear+99)
		}
	}
	ts := core.FromTime(t)
	return &ts, nil
}
