package input

import (
	"testing"
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
)

func TestThrust(t *testing.T) {
	tests := []struct {
		adc  uint16
		want int
	}{
		{4095, 0},
		{2048, 0},
		{1948, 0},
		{1947, 0},
		{1850, 10},
		{974, 50},
		{0, 100},
	}
	for _, tt := range tests {
		if got := Thrust(tt.adc); got != tt.want {
			t.Fatalf("Thrust(%d) = %d want %d", tt.adc, got, tt.want)
		}
	}
	for adc := 0; adc <= ADCMax; adc++ {
		if got := Thrust(uint16(adc)); got%ThrustStep != 0 || got < 0 || got > 100 {
			t.Fatalf("Thrust(%d) = %d not a step in 0..100", adc, got)
		}
	}
}

func TestRudder(t *testing.T) {
	tests := []struct {
		adc  uint16
		want int
	}{
		{0, 0},
		{2048, 50},
		{1949, 50},
		{2147, 50},
		{1948, 47},
		{4095, 100},
	}
	for _, tt := range tests {
		if got := Rudder(tt.adc); got != tt.want {
			t.Fatalf("Rudder(%d) = %d want %d", tt.adc, got, tt.want)
		}
	}
}

type fixed uint16

func (f *fixed) Sample() uint16 { return uint16(*f) }

func TestJoystickActivity(t *testing.T) {
	clk := clock.NewManual(0)
	thr, rud := fixed(ADCCenter), fixed(ADCCenter)
	j := NewJoystick(&thr, &rud, clk)
	if th, r := j.Read(); th != 0 || r != 50 || j.Active() {
		t.Fatalf("centered stick read %d,%d active=%v", th, r, j.Active())
	}
	thr = 0
	j.Read()
	if !j.Active() {
		t.Fatal("stick moved but not active")
	}
	thr = ADCCenter
	clk.Advance(ActivityTimeout)
	j.Read()
	if j.Active() {
		t.Fatal("still active after the timeout")
	}
}

type seqPin struct{ v bool }

func (p *seqPin) Get() bool { return p.v }

func TestDebounceBounceCountsOnce(t *testing.T) {
	clk := clock.NewManual(1000)
	pin := &seqPin{}
	d := NewDebouncer(pin, clk)

	presses := 0
	for _, level := range []bool{false, true, false, true} {
		pin.v = level
		if d.Pressed() {
			presses++
		}
		clk.Advance(4 * time.Millisecond)
	}
	if presses != 1 {
		t.Fatalf("got %d presses want 1", presses)
	}
	// still held: no new edge
	clk.Advance(50 * time.Millisecond)
	if d.Pressed() {
		t.Fatal("held button pressed again")
	}
	pin.v = false
	d.Pressed()
	pin.v = true
	if !d.Pressed() {
		t.Fatal("second real press missed")
	}
}

func TestDebounceHeldAtBoot(t *testing.T) {
	d := NewDebouncer(FuncPin(func() bool { return true }), clock.NewManual(0))
	if d.Pressed() {
		t.Fatal("a button held at boot is not a press")
	}
}
