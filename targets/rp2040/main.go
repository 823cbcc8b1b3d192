//go:build rp2040

package main

import (
	"machine"
	"time"

	"rtcclock/core"
	"rtcclock/rtc"
)

const (
	logBaud  = 115200
	logPin   = machine.GPIO0
	i2cSDA   = machine.GPIO4
	i2cSCL   = machine.GPIO5
	loopIdle = 100 * time.Microsecond
)

func main() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	uart := NewPIOUART(0, 0)
	if err := uart.Configure(logPin, logBaud); err != nil {
		park(led, 50*time.Millisecond)
	}
	log := core.NewLineLogger(uart)

	// DS3231 breakout on I2C0
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       i2cSDA,
		SCL:       i2cSCL,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		_ = log.Println("i2c configure failed: " + err.Error())
		park(led, 50*time.Millisecond)
	}
	clock := rtc.NewDS3231(machine.I2C0)

	sched := core.NewScheduler()
	sched.SetTime(GetHardwareTime())
	timer := core.NewPeriodicTimer(sched)

	driver := core.NewTickDriver(clock, log, core.DefaultTicksPerSecond)
	driver.SetHeartbeat(core.Toggler(led))

	if err := core.Boot(driver, timer, &core.ExampleTimestamp); err != nil {
		driver.Fault()
	}
	if err := clock.Err(); err != nil {
		_ = log.Println("rtc: " + err.Error())
	}

	// Main loop
	for driver.State() == core.StateRunning {
		func() {
			// A panic outside the tick callback is still fatal
			defer func() {
				if r := recover(); r != nil {
					driver.Fault()
				}
			}()
			sched.Advance(GetHardwareTime())
		}()

		time.Sleep(loopIdle)
	}

	park(led, 500*time.Millisecond)
}

// park blinks the LED forever
func park(led machine.Pin, period time.Duration) {
	blink := core.Toggler(led)
	for {
		blink()
		time.Sleep(period)
	}
}
