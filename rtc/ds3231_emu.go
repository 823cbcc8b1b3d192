package rtc

import (
	"errors"
	"time"

	"tinygo.org/x/drivers/ds3231"
)

var (
	ErrNoDevice   = errors.New("i2c: no device at address")
	ErrNoRegister = errors.New("i2c: write without register pointer")
)

const (
	emuRegCount   = 0x13 // seconds .. temperature LSB
	emuTimeRegEnd = 0x07 // registers 0x00-0x06 hold the time/date
)

// EmulatedDS3231 is a host-side DS3231 behind a drivers.I2C bus. Its
// timekeeping registers follow a wall clock plus the offset last written.
type EmulatedDS3231 struct {
	Address uint16

	regs   [emuRegCount]byte
	now    func() time.Time
	offset time.Duration
}

// NewEmulatedDS3231 creates a chip running on now, or on time.Now when nil
func NewEmulatedDS3231(now func() time.Time) *EmulatedDS3231 {
	if now == nil {
		now = time.Now
	}
	return &EmulatedDS3231{Address: ds3231.Address, now: now}
}

// Tx performs a combined write/read transaction. The first written byte is
// the register pointer, which auto-increments and wraps.
func (e *EmulatedDS3231) Tx(addr uint16, w, r []byte) error {
	if addr != e.Address {
		return ErrNoDevice
	}
	if len(w) == 0 {
		return ErrNoRegister
	}
	ptr := int(w[0]) % emuRegCount

	if len(w) > 1 {
		e.refresh()
		touchedTime := false
		for i, b := range w[1:] {
			reg := (ptr + i) % emuRegCount
			e.regs[reg] = b
			if reg < emuTimeRegEnd {
				touchedTime = true
			}
		}
		if touchedTime {
			e.latch()
		}
	}

	if len(r) > 0 {
		e.refresh()
		for i := range r {
			r[i] = e.regs[(ptr+i)%emuRegCount]
		}
	}
	return nil
}

// ReadRegister reads len(buf) registers starting at reg
func (e *EmulatedDS3231) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return e.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf to registers starting at reg
func (e *EmulatedDS3231) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return e.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// refresh rewrites the timekeeping registers from the clock
func (e *EmulatedDS3231) refresh() {
	t := e.now().Add(e.offset).UTC()

	e.regs[0] = toBCD(t.Second())
	e.regs[1] = toBCD(t.Minute())
	e.regs[2] = toBCD(t.Hour())
	e.regs[3] = byte(t.Weekday()) + 1
	e.regs[4] = toBCD(t.Day())
	month := toBCD(int(t.Month()))
	if t.Year() >= 2100 {
		month |= 0x80
	}
	e.regs[5] = month
	e.regs[6] = toBCD(t.Year() % 100)
}

// latch takes the timekeeping registers as the new clock setting
func (e *EmulatedDS3231) latch() {
	hourReg := e.regs[2]
	var hour int
	if hourReg&0x40 != 0 {
		hour = fromBCD(hourReg&0x1F) % 12
		if hourReg&0x20 != 0 {
			hour += 12
		}
	} else {
		hour = fromBCD(hourReg & 0x3F)
	}

	year := 2000 + fromBCD(e.regs[6])
	if e.regs[5]&0x80 != 0 {
		year += 100
	}

	set := time.Date(year, time.Month(fromBCD(e.regs[5]&0x1F)), fromBCD(e.regs[4]&0x3F),
		hour, fromBCD(e.regs[1]&0x7F), fromBCD(e.regs[0]&0x7F), 0, time.UTC)
	e.offset = set.Sub(e.now())
}

func toBCD(v int) byte {
	return byte(v/10)<<4 | byte(v%10)
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}
