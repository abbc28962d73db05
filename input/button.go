package input

import (
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
)

// DebounceTime is how long a button must stay quiet after a press before
// another press counts.
const DebounceTime = 20 * time.Millisecond

// Pin reads a digital input. machine.Pin satisfies it.
type Pin interface {
	Get() bool
}

// Debouncer detects presses on an active-high button.
type Debouncer struct {
	pin Pin
	clk clock.Clock

	level     bool
	pressedAt uint32
	armed     bool
}

// NewDebouncer watches pin. A button held at boot does not count as a
// press.
func NewDebouncer(pin Pin, clk clock.Clock) *Debouncer {
	return &Debouncer{pin: pin, clk: clk, level: pin.Get()}
}

// Pressed samples the pin and reports a rising edge that is at least
// DebounceTime after the previous accepted press. Bounces within that
// window are ignored.
func (d *Debouncer) Pressed() bool {
	level := d.pin.Get()
	rising := level && !d.level
	d.level = level
	if !rising {
		return false
	}
	now := d.clk.Millis()
	if d.armed && !clock.Elapsed(now, d.pressedAt, DebounceTime) {
		return false
	}
	d.armed = true
	d.pressedAt = now
	return true
}

// FuncPin adapts a function to Pin.
type FuncPin func() bool

func (f FuncPin) Get() bool { return f() }
