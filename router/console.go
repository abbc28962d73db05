package router

import (
	"strings"
	"time"

	"github.com/YeChamo/DroneBoatGang/uart"
)

// Commander runs one raw AT command. *modem.Driver satisfies it.
type Commander interface {
	Command(cmd string, timeout time.Duration) error
}

// Console is the debug serial prompt. AT lines go to the modem and the
// outcome is printed; anything else is echoed.
type Console struct {
	ch      *uart.Channel
	modem   Commander
	timeout time.Duration
	buf     [128]byte
}

// NewConsole serves ch. A nil modem echoes AT lines too.
func NewConsole(ch *uart.Channel, modem Commander, timeout time.Duration) *Console {
	return &Console{ch: ch, modem: modem, timeout: timeout}
}

// Handle returns the reply to one console line.
func (c *Console) Handle(l string) string {
	l = strings.TrimSpace(l)
	if c.modem == nil || !strings.HasPrefix(strings.ToUpper(l), "AT") {
		return l
	}
	if err := c.modem.Command(l, c.timeout); err != nil {
		return "ERR " + err.Error()
	}
	return "OK"
}

// Poll answers every complete line waiting on the console.
func (c *Console) Poll() {
	for {
		n, ok := c.ch.ReadLine(c.buf[:])
		if !ok {
			return
		}
		reply := c.Handle(string(c.buf[:n]))
		if reply == "" {
			continue
		}
		c.ch.WriteLine(reply)
	}
}
