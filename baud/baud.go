// Package baud finds the rate a serial device is talking at, for devices
// that cannot report it.
package baud

import (
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/clock"
)

// ErrNoResponse is returned when no candidate rate produced a response.
var ErrNoResponse = errors.New("baud: no response at any rate")

// Setter switches the local end of a serial link.
type Setter interface {
	SetBaudRate(br uint32) error
}

// Probe checks whether the device answers at the current rate. It owns the
// waiting and must return within its own timeout.
type Probe func(rate uint32) bool

// Discover tries rates in order and returns the first one probe accepts.
// When every candidate fails, or budget runs out first, it returns the last
// rate tried with ErrNoResponse; the port is left at that rate.
func Discover(port Setter, rates []uint32, budget time.Duration, clk clock.Clock, probe Probe) (uint32, error) {
	start := clk.Millis()
	var last uint32
	for _, rate := range rates {
		if clock.Elapsed(clk.Millis(), start, budget) {
			break
		}
		if err := port.SetBaudRate(rate); err != nil {
			return last, errors.Wrapf(err, "try %d", rate)
		}
		last = rate
		if probe(rate) {
			return rate, nil
		}
	}
	return last, ErrNoResponse
}
