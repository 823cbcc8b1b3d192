// Package rtc provides RTC backends that speak the packed BCD TIME/DATE
// register format: the on-chip STM32 peripheral, a host simulation, and an
// external DS3231 on I2C.
package rtc

import (
	"errors"

	"rtcclock/core"
)

// STM32 RTC register bits
const (
	wprKey1 = 0xCA
	wprKey2 = 0x53
	wprLock = 0xFF

	ISR_RSF   = 1 << 5
	ISR_INITF = 1 << 6
	ISR_INIT  = 1 << 7

	CR_FMT = 1 << 6 // 12-hour format when set

	PRER_ASYNC_SHIFT = 16

	trValidMask = 0x007F7F7F
	drValidMask = 0x00FFFF3F
)

// ErrInitTimeout is returned when the peripheral never reports init mode
var ErrInitTimeout = errors.New("rtc: timed out waiting for INITF")

// Registers is the STM32 RTC register block used here
type Registers struct {
	TR   core.Register
	DR   core.Register
	CR   core.Register
	ISR  core.Register
	PRER core.Register
	WPR  core.Register
}

// Config holds the bring-up settings of the peripheral
type Config struct {
	// AsyncPrescaler and SyncPrescaler divide the RTC clock down to 1Hz:
	// f = clk / ((async+1) * (sync+1))
	AsyncPrescaler uint8
	SyncPrescaler  uint16

	// HourFormat12 selects AM/PM mode. The codec only handles 24-hour mode.
	HourFormat12 bool
}

// DefaultConfig returns prescalers for a 32.768kHz LSE
func DefaultConfig() Config {
	return Config{
		AsyncPrescaler: 0x7F,
		SyncPrescaler:  0xFF,
	}
}

// Peripheral drives the on-chip RTC through its registers
type Peripheral struct {
	regs Registers

	// InitPollLimit bounds the wait for INITF
	InitPollLimit int

	err error
}

// NewPeripheral wraps a register block
func NewPeripheral(regs Registers) *Peripheral {
	return &Peripheral{
		regs:          regs,
		InitPollLimit: 10000,
	}
}

// Configure sets the prescalers and hour format. The RTC clock source must
// already be selected and enabled.
func (p *Peripheral) Configure(cfg Config) error {
	return p.withInit(func() {
		p.regs.PRER.Set(uint32(cfg.AsyncPrescaler)<<PRER_ASYNC_SHIFT | uint32(cfg.SyncPrescaler&0x7FFF))
		cr := p.regs.CR.Get()
		if cfg.HourFormat12 {
			cr |= CR_FMT
		} else {
			cr &^= CR_FMT
		}
		p.regs.CR.Set(cr)
	})
}

// ReadTime returns the TIME register. On hardware this locks the DATE
// shadow register until DATE is read.
func (p *Peripheral) ReadTime() uint32 {
	return p.regs.TR.Get()
}

// ReadDate returns the DATE register
func (p *Peripheral) ReadDate() uint32 {
	return p.regs.DR.Get()
}

// SetTimeDate loads tr and dr through init mode
func (p *Peripheral) SetTimeDate(tr, dr uint32) error {
	return p.withInit(func() {
		p.regs.TR.Set(tr & trValidMask)
		p.regs.DR.Set(dr & drValidMask)
	})
}

// WriteTimeDate implements core.RTC. Failures are kept for Err.
func (p *Peripheral) WriteTimeDate(tr, dr uint32) {
	p.err = p.SetTimeDate(tr, dr)
}

// Err returns the error of the last WriteTimeDate
func (p *Peripheral) Err() error {
	return p.err
}

// withInit unlocks the write protection, enters init mode, runs fn and
// restores the running state
func (p *Peripheral) withInit(fn func()) error {
	p.regs.WPR.Set(wprKey1)
	p.regs.WPR.Set(wprKey2)
	defer p.regs.WPR.Set(wprLock)

	p.regs.ISR.Set(p.regs.ISR.Get() | ISR_INIT)
	ready := false
	for i := 0; i < p.InitPollLimit; i++ {
		if p.regs.ISR.Get()&ISR_INITF != 0 {
			ready = true
			break
		}
	}
	if !ready {
		p.regs.ISR.Set(p.regs.ISR.Get() &^ ISR_INIT)
		return ErrInitTimeout
	}

	fn()

	// Leaving init mode restarts the calendar; shadow registers resync
	p.regs.ISR.Set(p.regs.ISR.Get() &^ (ISR_INIT | ISR_RSF))
	return nil
}
