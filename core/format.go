package core

// FormatStatus appends the per-tick status line:
//
//	tr=0x00193015 dr=0x00182817 18-08-17 wd=1 19:30:15
//
// Month is printed zero-based, as stored.
func FormatStatus(b []byte, tr, dr uint32, ts Timestamp) []byte {
	b = append(b, "tr="...)
	b = appendHex32(b, tr)
	b = append(b, " dr="...)
	b = appendHex32(b, dr)
	b = append(b, ' ')
	b = appendDigits2(b, ts.YearOffset)
	b = append(b, '-')
	b = appendDigits2(b, ts.Month)
	b = append(b, '-')
	b = appendDigits2(b, ts.Day)
	b = append(b, " wd="...)
	b = appendUint(b, uint32(ts.Weekday))
	b = append(b, ' ')
	b = appendDigits2(b, ts.Hour)
	b = append(b, ':')
	b = appendDigits2(b, ts.Minute)
	b = append(b, ':')
	b = appendDigits2(b, ts.Second)
	return b
}

// FormatElapsed appends the once-per-second line
func FormatElapsed(b []byte, seconds uint32) []byte {
	b = append(b, "elapsed seconds="...)
	return appendUint(b, seconds)
}
