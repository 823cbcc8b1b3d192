package core

// Register is a 32-bit hardware register.
// TinyGo's volatile.Register32 satisfies it directly.
type Register interface {
	Get() uint32
	Set(value uint32)
}

// MemRegister is a plain memory-backed Register for hosted builds and tests
type MemRegister struct {
	Value uint32
}

// Get returns the stored value
func (r *MemRegister) Get() uint32 {
	return r.Value
}

// Set stores value
func (r *MemRegister) Set(value uint32) {
	r.Value = value
}

// RTC is the abstract real-time-clock interface that core code uses.
// Platform-specific implementations own the register access.
type RTC interface {
	// ReadTime returns the packed TIME register. Reading TIME latches the
	// matching DATE value so that the pair is a single snapshot.
	ReadTime() uint32

	// ReadDate returns the packed DATE register latched by ReadTime
	ReadDate() uint32

	// WriteTimeDate loads a new packed time and date into the clock
	WriteTimeDate(tr, dr uint32)
}

// ReadTimestamp snapshots rtc and decodes the register pair
func ReadTimestamp(rtc RTC) (tr, dr uint32, ts Timestamp) {
	tr = rtc.ReadTime()
	dr = rtc.ReadDate()
	return tr, dr, Decode(tr, dr)
}

// WriteTimestamp encodes ts and loads it into rtc
func WriteTimestamp(rtc RTC, ts Timestamp) {
	rtc.WriteTimeDate(Encode(ts))
}
