//go:build stm32f4

package main

import (
	"device/stm32"
	"errors"

	"rtcclock/rtc"
)

// Backup domain and clock bits used to start the RTC (RM0090 section 6.3)
const (
	pwrCR_DBP      = 1 << 8
	rccAPB1ENR_PWR = 1 << 28
	rccCSR_LSION   = 1 << 0
	rccCSR_LSIRDY  = 1 << 1
	rccBDCR_RTCSEL = 3 << 8
	rccBDCR_LSI    = 2 << 8
	rccBDCR_RTCEN  = 1 << 15

	lsiReadyLimit = 100000
)

var errLSITimeout = errors.New("rtc: LSI oscillator not ready")

// LSI runs at roughly 32kHz: 32000 / (127+1) / (249+1) = 1Hz
var lsiConfig = rtc.Config{
	AsyncPrescaler: 0x7F,
	SyncPrescaler:  249,
}

// initRTC clocks the RTC from LSI and returns the peripheral driver
func initRTC() (*rtc.Peripheral, error) {
	// Unlock the backup domain
	stm32.RCC.APB1ENR.SetBits(rccAPB1ENR_PWR)
	stm32.PWR.CR.SetBits(pwrCR_DBP)

	stm32.RCC.CSR.SetBits(rccCSR_LSION)
	for i := 0; !stm32.RCC.CSR.HasBits(rccCSR_LSIRDY); i++ {
		if i >= lsiReadyLimit {
			return nil, errLSITimeout
		}
	}

	bdcr := stm32.RCC.BDCR.Get()
	bdcr = bdcr&^rccBDCR_RTCSEL | rccBDCR_LSI | rccBDCR_RTCEN
	stm32.RCC.BDCR.Set(bdcr)

	p := rtc.NewPeripheral(rtc.Registers{
		TR:   &stm32.RTC.TR,
		DR:   &stm32.RTC.DR,
		CR:   &stm32.RTC.CR,
		ISR:  &stm32.RTC.ISR,
		PRER: &stm32.RTC.PRER,
		WPR:  &stm32.RTC.WPR,
	})
	if err := p.Configure(lsiConfig); err != nil {
		return nil, err
	}
	return p, nil
}
