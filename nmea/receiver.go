package nmea

import (
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/baud"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/uart"
)

// Fix is the last known position.
type Fix struct {
	Valid     bool
	Lat       float64
	Lon       float64
	UpdatedAt uint32 // clock millis
}

// Age returns how old the fix is at now.
func (f Fix) Age(now uint32) time.Duration {
	return time.Duration(clock.Since(now, f.UpdatedAt)) * time.Millisecond
}

// Fresh reports whether the fix is valid and younger than maxAge.
func (f Fix) Fresh(now uint32, maxAge time.Duration) bool {
	return f.Valid && f.Age(now) < maxAge
}

// Newer returns whichever valid fix was updated last, preferring a.
func Newer(now uint32, a, b Fix) Fix {
	switch {
	case !b.Valid:
		return a
	case !a.Valid:
		return b
	case a.Age(now) <= b.Age(now):
		return a
	}
	return b
}

// Receiver owns the fix of one GPS module.
type Receiver struct {
	clk clock.Clock
	log *log.Logger
	fix Fix

	sentences uint32
	rejected  uint32
}

// NewReceiver returns a receiver with no fix. A nil logger discards.
func NewReceiver(clk clock.Clock, logger *log.Logger) *Receiver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Receiver{clk: clk, log: logger}
}

// Fix returns the current fix.
func (r *Receiver) Fix() Fix {
	return r.fix
}

// HandleLine applies one NMEA line. Sentences other than RMC are ignored.
// A void RMC clears the fix; a corrupt one leaves it untouched.
func (r *Receiver) HandleLine(line string) error {
	lat, lon, err := ParseRMC(line)
	switch {
	case err == nil:
		r.sentences++
		r.fix = Fix{Valid: true, Lat: lat, Lon: lon, UpdatedAt: r.clk.Millis()}
		return nil
	case errors.Is(err, ErrNoFix):
		r.sentences++
		r.fix.Valid = false
		return err
	case errors.Is(err, ErrNotRMC):
		return nil
	}
	r.rejected++
	r.log.Printf("[gps] drop %q: %v", line, err)
	return err
}

// Poll drains complete lines from ch. It reports whether any line arrived.
func (r *Receiver) Poll(ch *uart.Channel) bool {
	var buf [128]byte
	got := false
	for {
		n, ok := ch.ReadLine(buf[:])
		if !ok {
			return got
		}
		got = true
		r.HandleLine(string(buf[:n]))
	}
}

// Stats returns accepted and rejected RMC counts.
func (r *Receiver) Stats() (accepted, rejected uint32) {
	return r.sentences, r.rejected
}

// AutobaudRates is the order GPS rates are tried in; 9600 is the factory
// default of most modules.
var AutobaudRates = []uint32{9600, 4800, 38400, 57600, 115200}

const (
	probeWindow    = 700 * time.Millisecond
	autobaudBudget = 3 * time.Second
	probeMinBytes  = 10
)

// Autobaud finds the GPS rate by listening: a rate is accepted once a line
// starting with '$' or at least ten bytes arrive within the probe window.
func Autobaud(ch *uart.Channel, clk clock.Clock) (uint32, error) {
	return baud.Discover(ch, AutobaudRates, autobaudBudget, clk, func(uint32) bool {
		start := clk.Millis()
		base := ch.Lines.Received()
		for !clock.Elapsed(clk.Millis(), start, probeWindow) {
			if ch.Pump() {
				if s, _ := ch.Lines.TakeString(); len(s) > 0 && s[0] == '$' {
					return true
				}
			}
			if ch.Lines.Received()-base >= probeMinBytes {
				return true
			}
			clk.Sleep(5 * time.Millisecond)
		}
		return false
	})
}
