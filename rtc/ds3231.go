package rtc

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"

	"rtcclock/core"
)

// DS3231 presents an external DS3231 as the packed TIME/DATE register pair.
// Each ReadTime is one I2C transaction; ReadDate returns the date from it.
type DS3231 struct {
	dev ds3231.Device

	time uint32
	date uint32
	err  error
}

// NewDS3231 wraps the DS3231 at its default address on bus
func NewDS3231(bus drivers.I2C) *DS3231 {
	return &DS3231{dev: ds3231.New(bus)}
}

// ReadTime reads the chip and encodes the result. On a bus error the
// previous snapshot is returned and the error is kept for Err.
func (r *DS3231) ReadTime() uint32 {
	t, err := r.dev.ReadTime()
	if err != nil {
		r.err = err
		return r.time
	}
	r.err = nil
	r.time, r.date = core.Encode(core.FromTime(t))
	return r.time
}

// ReadDate returns the date latched by the last ReadTime
func (r *DS3231) ReadDate() uint32 {
	return r.date
}

// WriteTimeDate decodes the registers and sets the chip
func (r *DS3231) WriteTimeDate(tr, dr uint32) {
	r.err = r.dev.SetTime(core.Decode(tr, dr).Time())
	if r.err == nil {
		r.time, r.date = tr, dr
	}
}

// Err returns the error of the last bus transaction
func (r *DS3231) Err() error {
	return r.err
}
