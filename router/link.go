package router

import (
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/input"
)

// LinkPollInterval is how often the phone connection level is sampled.
const LinkPollInterval = 500 * time.Millisecond

// Link follows the Bluetooth module's STATE pin, high while a phone is
// connected. A Link without a pin is always connected.
type Link struct {
	pin input.Pin
	clk clock.Clock

	connected bool
	polled    bool
	lastPoll  uint32
}

// NewLink watches pin; pass nil to ignore the link state.
func NewLink(pin input.Pin, clk clock.Clock) *Link {
	return &Link{pin: pin, clk: clk}
}

func (l *Link) level() bool {
	return l.pin == nil || l.pin.Get()
}

// Connected returns the level seen by the last poll, or the live level
// before the first poll.
func (l *Link) Connected() bool {
	if !l.polled {
		return l.level()
	}
	return l.connected
}

// Poll samples the pin at most every LinkPollInterval and reports a
// transition to connected. The first poll counts a connected phone as a
// transition.
func (l *Link) Poll() (connectedNow bool) {
	now := l.clk.Millis()
	if l.polled && !clock.Elapsed(now, l.lastPoll, LinkPollInterval) {
		return false
	}
	l.lastPoll = now
	c := l.level()
	rising := c && (!l.polled || !l.connected)
	l.connected = c
	l.polled = true
	return rising
}
