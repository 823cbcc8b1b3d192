package core

// appendUint appends the decimal form of n
func appendUint(b []byte, n uint32) []byte {
	var buf [10]byte
	pos := len(buf)
	for {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(b, buf[pos:]...)
}

// appendDigits2 appends n as exactly two decimal digits.
// Values above 99 keep only their last two digits.
func appendDigits2(b []byte, n uint8) []byte {
	return append(b, byte('0'+n/10%10), byte('0'+n%10))
}

// appendHex32 appends n as 0x-prefixed, zero-padded 8-digit hex
func appendHex32(b []byte, n uint32) []byte {
	const hexDigits = "0123456789abcdef"
	b = append(b, '0', 'x')
	for shift := 28; shift >= 0; shift -= 4 {
		b = append(b, hexDigits[(n>>uint(shift))&0xf])
	}
	return b
}
