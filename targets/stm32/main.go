//go:build stm32f4

package main

import (
	"machine"
	"time"

	"rtcclock/core"
)

const (
	logBaud  = 115200
	loopIdle = 100 * time.Microsecond
)

func main() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// USART2 on the Nucleo ST-LINK bridge
	if err := machine.Serial.Configure(machine.UARTConfig{BaudRate: logBaud}); err != nil {
		park(led, 50*time.Millisecond)
	}
	log := core.NewLineLogger(machine.Serial)

	clock, err := initRTC()
	if err != nil {
		_ = log.Println("rtc: " + err.Error())
		park(led, 50*time.Millisecond)
	}

	start := time.Now()
	uptime := func() uint32 {
		return core.TimerFromDuration(time.Since(start))
	}

	sched := core.NewScheduler()
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
			sched.Advance(uptime())
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
