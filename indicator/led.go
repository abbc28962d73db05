// Package indicator drives the status LEDs: blink patterns for node state
// and the four-LED bank commanded over the radio.
package indicator

import (
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
)

// Pin is a digital output. machine.Pin satisfies it.
type Pin interface {
	Set(high bool)
}

// Pattern is an LED behaviour.
type Pattern int

const (
	Off Pattern = iota
	On
	SlowFlash // 250 ms on/off
	FastFlash // 50 ms on/off
	Flash     // 150 ms on/off
	Heartbeat // 500 ms on/off
)

func (p Pattern) halfPeriod() time.Duration {
	switch p {
	case SlowFlash:
		return 250 * time.Millisecond
	case FastFlash:
		return 50 * time.Millisecond
	case Flash:
		return 150 * time.Millisecond
	case Heartbeat:
		return 500 * time.Millisecond
	}
	return 0
}

// LED runs a pattern on one pin. Update must be called from the main loop.
type LED struct {
	pin        Pin
	clk        clock.Clock
	pattern    Pattern
	isOn       bool
	lastToggle uint32
}

// NewLED returns a dark LED.
func NewLED(pin Pin, clk clock.Clock) *LED {
	l := &LED{pin: pin, clk: clk}
	l.write(false)
	return l
}

func (l *LED) write(on bool) {
	l.isOn = on
	l.pin.Set(on)
}

// SetPattern switches pattern; flashing patterns start lit.
func (l *LED) SetPattern(p Pattern) {
	if p == l.pattern {
		return
	}
	l.pattern = p
	l.lastToggle = l.clk.Millis()
	l.write(p != Off)
}

// Pattern returns the current pattern.
func (l *LED) Pattern() Pattern {
	return l.pattern
}

// IsOn reports the pin level last written.
func (l *LED) IsOn() bool {
	return l.isOn
}

// Update advances a flashing pattern.
func (l *LED) Update() {
	half := l.pattern.halfPeriod()
	if half == 0 {
		return
	}
	now := l.clk.Millis()
	if clock.Elapsed(now, l.lastToggle, half) {
		l.write(!l.isOn)
		l.lastToggle = now
	}
}

// Bank is the row of four LEDs a radio digit command selects from.
type Bank struct {
	leds []*LED
}

// NewBank groups leds; LED1 is leds[0].
func NewBank(leds ...*LED) *Bank {
	return &Bank{leds: leds}
}

// Len returns the number of LEDs.
func (b *Bank) Len() int {
	return len(b.leds)
}

// Apply lights LED n alone, or turns all off for 0. Digits beyond the
// bank are ignored and reported false.
func (b *Bank) Apply(n int) bool {
	if n < 0 || n > len(b.leds) {
		return false
	}
	for i, l := range b.leds {
		if i == n-1 {
			l.SetPattern(On)
		} else {
			l.SetPattern(Off)
		}
	}
	return true
}

// LED returns LED n (1-based), or nil.
func (b *Bank) LED(n int) *LED {
	if n < 1 || n > len(b.leds) {
		return nil
	}
	return b.leds[n-1]
}

// Chase lights each LED in turn for step, then turns all off. It blocks
// and is meant for the boot sequence.
func (b *Bank) Chase(clk clock.Clock, step time.Duration) {
	for n := 1; n <= len(b.leds); n++ {
		b.Apply(n)
		clk.Sleep(step)
	}
	b.Apply(0)
}

// Update advances every LED pattern.
func (b *Bank) Update() {
	for _, l := range b.leds {
		l.Update()
	}
}
