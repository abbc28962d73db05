// Package clock supplies the monotonic millisecond tick used by every
// timing decision in the firmware.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic millisecond counter with a cooperative sleep.
// Millis wraps around after ~49 days; compare ticks with Since.
type Clock interface {
	Millis() uint32
	Sleep(d time.Duration)
}

// System is the wall clock of the running program.
type System struct {
	start time.Time
}

// NewSystem starts a clock at zero.
func NewSystem() *System {
	return &System{start: time.Now()}
}

func (s *System) Millis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}

func (s *System) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Manual is a clock that only moves when told to. Sleep advances it
// instantly, so deadline loops finish without real waiting.
type Manual struct {
	ms atomic.Uint32
}

// NewManual returns a manual clock reading start.
func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.ms.Store(start)
	return m
}

func (m *Manual) Millis() uint32 {
	return m.ms.Load()
}

func (m *Manual) Sleep(d time.Duration) {
	m.Advance(d)
}

// Advance moves the clock forward by d, rounded down to whole milliseconds.
// Durations shorter than a millisecond still advance by one so polling
// loops make progress.
func (m *Manual) Advance(d time.Duration) {
	step := uint32(d / time.Millisecond)
	if step == 0 {
		step = 1
	}
	m.ms.Add(step)
}

// Set jumps the clock to ms.
func (m *Manual) Set(ms uint32) {
	m.ms.Store(ms)
}

// Since returns the milliseconds elapsed from then to now, correct across
// counter wrap-around.
func Since(now, then uint32) uint32 {
	return now - then
}

// Elapsed reports whether at least d has passed between then and now.
func Elapsed(now, then uint32, d time.Duration) bool {
	return Since(now, then) >= uint32(d/time.Millisecond)
}
