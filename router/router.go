// Package router is the control logic of both nodes. A Boat turns radio
// payloads into actuator setpoints and reports its position; a Controller
// turns joystick, button and phone input into radio payloads and relays
// what the boat sends back.
package router

import (
	"io"
	"log"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/modem"
	"github.com/YeChamo/DroneBoatGang/payload"
)

var (
	// ErrNoFix is returned when a position is requested before any valid fix.
	ErrNoFix = errors.New("router: no valid GPS fix")
	// ErrDeferred is returned for a send skipped because an earlier send in
	// the same Step timed out.
	ErrDeferred = errors.New("router: radio stalled, send deferred")
)

// Radio carries payloads to a peer. *modem.Driver satisfies it.
type Radio interface {
	Send(addr uint16, payload string) error
	Poll() int
}

// txPass sends on behalf of one Step. Once a send times out the rest of
// the pass sends nothing, so a Step blocks for at most one send timeout and
// the loop keeps feeding the watchdog.
type txPass struct {
	radio   Radio
	stalled bool
}

func (t *txPass) end() {
	t.stalled = false
}

func (t *txPass) send(addr uint16, p string) error {
	if t.stalled {
		return ErrDeferred
	}
	err := t.radio.Send(addr, p)
	if errors.Is(err, modem.ErrSendTimeout) {
		t.stalled = true
	}
	return err
}

// Mode is the boat's operating mode, switched by MODE=0 and MODE=1.
type Mode int

const (
	ModeGPSReport  Mode = iota // status LEDs show the GPS state
	ModeLEDCommand             // digit payloads select an LED
)

func (m Mode) String() string {
	if m == ModeGPSReport {
		return "GPS"
	}
	return "LED"
}

func discard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard, "", 0)
	}
	return l
}

func formatGPS(e7 bool, lat, lon float64) string {
	if e7 {
		return payload.FormatGPSE7(lat, lon)
	}
	return payload.FormatGPS(lat, lon)
}
