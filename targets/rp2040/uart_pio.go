//go:build rp2040

package main

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program for 8N1 serial transmit, 8 PIO cycles per bit
//
//	0: pull block
//	1: set x, 7
//	2: set pins, 0 [7]   start bit
//	3: out pins, 1 [6]   data bits, LSB first
//	4: jmp x--, 3
//	5: set pins, 1 [7]   stop bit
//
// The line idles high while the state machine stalls on pull.
func buildUARTTxProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0
		asm.Set(rp2pio.SetDestX, 7).Encode(),             // 1
		asm.Set(rp2pio.SetDestPins, 0).Delay(7).Encode(), // 2
		// bitloop:
		asm.Out(rp2pio.OutDestPins, 1).Delay(6).Encode(), // 3
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(),         // 4
		asm.Set(rp2pio.SetDestPins, 1).Delay(7).Encode(), // 5
		// .wrap
	}
}

const (
	uartPIOOrigin    = 0 // Jump addresses above are absolute
	uartCyclesPerBit = 8
	uartSpinLimit    = 100000
)

var ErrTxStalled = errors.New("pio uart: tx fifo stalled")

// PIOUART is a transmit-only serial port on a PIO state machine. It is the
// log sink on boards whose hardware UARTs are taken.
type PIOUART struct {
	pio *rp2pio.PIO
	sm  rp2pio.StateMachine
	tx  machine.Pin
}

// NewPIOUART claims state machine smNum on PIO0 or PIO1
func NewPIOUART(pioNum, smNum uint8) *PIOUART {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PIOUART{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Configure loads the program and starts transmitting on tx at baud
func (u *PIOUART) Configure(tx machine.Pin, baud uint32) error {
	u.tx = tx
	u.sm.TryClaim()

	program := buildUARTTxProgram()
	offset, err := u.pio.AddProgram(program, uartPIOOrigin)
	if err != nil {
		return err
	}

	u.tx.Configure(machine.PinConfig{Mode: u.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(u.tx, 1)
	cfg.SetOutPins(u.tx, 1)
	// Shift right so bytes leave LSB first, explicit pull
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// Clock divider in 1/256 steps: sysclk / (cycles per bit * baud)
	div := uint64(machine.CPUFrequency()) * 256 / (uartCyclesPerBit * uint64(baud))
	cfg.SetClkDivIntFrac(uint16(div>>8), uint8(div))

	u.sm.Init(offset, cfg)

	// Pin direction and idle level must be set after Init
	u.sm.SetPindirsConsecutive(u.tx, 1, true)
	u.sm.SetPinsConsecutive(u.tx, 1, true)

	u.sm.SetEnabled(true)
	return nil
}

// WriteByte queues c for transmission, blocking while the FIFO is full
func (u *PIOUART) WriteByte(c byte) error {
	for spins := 0; u.sm.IsTxFIFOFull(); spins++ {
		if spins >= uartSpinLimit {
			return ErrTxStalled
		}
	}
	u.sm.TxPut(uint32(c))
	return nil
}
