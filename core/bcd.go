package core

import "time"

// Timestamp is a calendar time as held by the RTC.
// Month is zero-based and Weekday counts from Sunday = 0.
type Timestamp struct {
	YearOffset uint8 // years since EpochYear, 0-99
	Month      uint8 // 0-11
	Day        uint8 // 1-31
	Weekday    uint8 // 0-6
	Hour       uint8 // 0-23
	Minute     uint8 // 0-59
	Second     uint8 // 0-59
}

// EpochYear is the calendar year of YearOffset 0
const EpochYear = 2000

// ExampleTimestamp is written to the RTC at bring-up when no start time is given
var ExampleTimestamp = Timestamp{
	YearOffset: 18,
	Month:      8,
	Day:        17,
	Weekday:    1,
	Hour:       19,
	Minute:     30,
	Second:     15,
}

// BCD field layout of the TIME register (STM32 RTC_TR)
const (
	TRSecondUnitsShift = 0
	TRSecondUnitsMask  = 0xF
	TRSecondTensShift  = 4
	TRSecondTensMask   = 0x7
	TRMinuteUnitsShift = 8
	TRMinuteUnitsMask  = 0xF
	TRMinuteTensShift  = 12
	TRMinuteTensMask   = 0x7
	TRHourUnitsShift   = 16
	TRHourUnitsMask    = 0xF
	TRHourTensShift    = 20
	TRHourTensMask     = 0x3
)

// BCD field layout of the DATE register (STM32 RTC_DR)
const (
	DRDayUnitsShift   = 0
	DRDayUnitsMask    = 0xF
	DRDayTensShift    = 4
	DRDayTensMask     = 0x3
	DRMonthUnitsShift = 8
	DRMonthUnitsMask  = 0xF
	DRMonthTensShift  = 12
	DRMonthTensMask   = 0x1
	DRWeekdayShift    = 13
	DRWeekdayMask     = 0x7
	DRYearUnitsShift  = 16
	DRYearUnitsMask   = 0xF
	DRYearTensShift   = 20
	DRYearTensMask    = 0xF
)

// packBCD places the tens and units digits of v into their fields.
// Digits wider than their mask are truncated, not rejected.
func packBCD(v uint8, tensShift, tensMask, unitsShift, unitsMask uint32) uint32 {
	tens := uint32(v/10) & tensMask
	units := uint32(v%10) & unitsMask
	return tens<<tensShift | units<<unitsShift
}

func unpackBCD(reg uint32, tensShift, tensMask, unitsShift, unitsMask uint32) uint8 {
	tens := (reg >> tensShift) & tensMask
	units := (reg >> unitsShift) & unitsMask
	return uint8(tens*10 + units)
}

// Encode packs a timestamp into the TIME and DATE register values.
// Fields are not range checked: a tens digit wider than its field is
// truncated, so out-of-range values decode to a different time.
func Encode(ts Timestamp) (tr, dr uint32) {
	tr = packBCD(ts.Hour, TRHourTensShift, TRHourTensMask, TRHourUnitsShift, TRHourUnitsMask) |
		packBCD(ts.Minute, TRMinuteTensShift, TRMinuteTensMask, TRMinuteUnitsShift, TRMinuteUnitsMask) |
		packBCD(ts.Second, TRSecondTensShift, TRSecondTensMask, TRSecondUnitsShift, TRSecondUnitsMask)

	dr = packBCD(ts.YearOffset, DRYearTensShift, DRYearTensMask, DRYearUnitsShift, DRYearUnitsMask) |
		packBCD(ts.Month, DRMonthTensShift, DRMonthTensMask, DRMonthUnitsShift, DRMonthUnitsMask) |
		packBCD(ts.Day, DRDayTensShift, DRDayTensMask, DRDayUnitsShift, DRDayUnitsMask) |
		(uint32(ts.Weekday%7)&DRWeekdayMask)<<DRWeekdayShift
	return tr, dr
}

// Decode unpacks TIME and DATE register values. Any input decodes; the
// result is not necessarily a valid calendar date.
func Decode(tr, dr uint32) Timestamp {
	return Timestamp{
		YearOffset: unpackBCD(dr, DRYearTensShift, DRYearTensMask, DRYearUnitsShift, DRYearUnitsMask),
		Month:      unpackBCD(dr, DRMonthTensShift, DRMonthTensMask, DRMonthUnitsShift, DRMonthUnitsMask),
		Day:        unpackBCD(dr, DRDayTensShift, DRDayTensMask, DRDayUnitsShift, DRDayUnitsMask),
		Weekday:    uint8((dr>>DRWeekdayShift)&DRWeekdayMask) % 7,
		Hour:       unpackBCD(tr, TRHourTensShift, TRHourTensMask, TRHourUnitsShift, TRHourUnitsMask),
		Minute:     unpackBCD(tr, TRMinuteTensShift, TRMinuteTensMask, TRMinuteUnitsShift, TRMinuteUnitsMask),
		Second:     unpackBCD(tr, TRSecondTensShift, TRSecondTensMask, TRSecondUnitsShift, TRSecondUnitsMask),
	}
}

// FromTime converts t to a Timestamp. Years outside EpochYear..EpochYear+99
// are not rejected and wrap through uint8.
func FromTime(t time.Time) Timestamp {
	return Timestamp{
		YearOffset: uint8(t.Year() - EpochYear),
		Month:      uint8(t.Month() - 1),
		Day:        uint8(t.Day()),
		Weekday:    uint8(t.Weekday()),
		Hour:       uint8(t.Hour()),
		Minute:     uint8(t.Minute()),
		Second:     uint8(t.Second()),
	}
}

// Time returns ts as a UTC time.Time. Weekday is ignored; time.Date
// normalizes out-of-range fields.
func (ts Timestamp) Time() time.Time {
	return time.Date(EpochYear+int(ts.YearOffset), time.Month(ts.Month)+1, int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), 0, time.UTC)
}
