package core

// Boot brings the clock up: it logs StartMessage, loads initial into the
// driver's RTC when it is not nil, and arms the driver on timer.
func Boot(d *TickDriver, timer ElapsedTimer, initial *Timestamp) error {
	_ = d.log.Println(StartMessage)

	if initial != nil {
		WriteTimestamp(d.rtc, *initial)
	}

	return d.Start(timer)
}
