package core

// StatusPin is a digital output whose level can be read back.
// machine.Pin satisfies it on TinyGo targets.
type StatusPin interface {
	Set(high bool)
	Get() bool
}

// Toggler returns a heartbeat that flips pin on every call
func Toggler(pin StatusPin) func() {
	return func() {
		pin.Set(!pin.Get())
	}
}

// MemPin is an in-memory StatusPin that counts level changes
type MemPin struct {
	High    bool
	Toggles uint32
}

func (p *MemPin) Set(high bool) {
	if high != p.High {
		p.Toggles++
	}
	p.High = high
}

func (p *MemPin) Get() bool {
	return p.High
}
