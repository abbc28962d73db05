// Package uart models the serial channels of a node as bounded byte
// streams and pumps them into line assemblers.
//
// The same Port interface is served by machine.UART on the boards, by a
// host serial device on a PC, and by Mem in tests.
package uart

import (
	"github.com/pkg/errors"
	"tinygo.org/x/drivers"

	"github.com/YeChamo/DroneBoatGang/line"
)

// ErrClosed is returned when writing to a closed port.
var ErrClosed = errors.New("uart: port closed")

// Port is a duplex serial stream. Read never blocks: it returns 0, nil when
// nothing is buffered.
type Port interface {
	drivers.UART
	SetBaudRate(br uint32) error
}

// Overrunner is implemented by ports that can tell when received bytes were
// lost. Overrun reports and clears the condition.
type Overrunner interface {
	Overrun() bool
}

// Channel joins a Port to its line assembler.
type Channel struct {
	Port  Port
	Lines *line.Assembler

	pending [32]byte
	start   int
	end     int
}

// NewChannel returns a channel that frames port input with lines.
func NewChannel(port Port, lines *line.Assembler) *Channel {
	return &Channel{Port: port, Lines: lines}
}

// Pump moves received bytes into the assembler. It stops as soon as a line
// is complete, leaving later bytes queued, and reports whether a line is
// ready.
func (c *Channel) Pump() bool {
	for !c.Lines.Ready() {
		if c.start == c.end {
			if o, ok := c.Port.(Overrunner); ok && o.Overrun() {
				c.Lines.Resync()
			}
			if c.Port.Buffered() == 0 {
				break
			}
			n, err := c.Port.Read(c.pending[:])
			if err != nil || n == 0 {
				break
			}
			c.start, c.end = 0, n
		}
		c.Lines.Feed(c.pending[c.start])
		c.start++
	}
	return c.Lines.Ready()
}

// ReadLine pumps and copies a complete line into dst.
func (c *Channel) ReadLine(dst []byte) (int, bool) {
	c.Pump()
	return c.Lines.Take(dst)
}

// ReadString is ReadLine returning a string.
func (c *Channel) ReadString() (string, bool) {
	c.Pump()
	return c.Lines.TakeString()
}

// WriteLine writes s followed by CRLF.
func (c *Channel) WriteLine(s string) error {
	if _, err := c.Port.Write([]byte(s)); err != nil {
		return err
	}
	_, err := c.Port.Write([]byte("\r\n"))
	return err
}

// SetBaudRate switches the port rate and forgets any partial input, which
// was framed at the old rate.
func (c *Channel) SetBaudRate(br uint32) error {
	if err := c.Port.SetBaudRate(br); err != nil {
		return errors.Wrapf(err, "set baud rate %d", br)
	}
	c.Flush()
	return nil
}

// Flush drops queued input and any partial or pending line.
func (c *Channel) Flush() {
	c.start, c.end = 0, 0
	var scratch [32]byte
	for c.Port.Buffered() > 0 {
		if n, err := c.Port.Read(scratch[:]); err != nil || n == 0 {
			break
		}
	}
	c.Lines.Reset()
}
