// Package modem drives a LoRa modem that speaks a line-based AT dialect
// (RYLR896 and compatibles).
//
// The modem shares one serial channel between command responses and
// unsolicited +RCV= notifications. Every wait for a response therefore
// keeps dispatching receive frames to the inbound handler as they arrive,
// and only the first non-frame terminal line completes the command.
package modem

import (
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/baud"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/uart"
)

// MaxPayload is the largest payload the modem accepts in one AT+SEND.
const MaxPayload = 240

// LineCapacity is the longest modem line the driver frames. It fits
// +RCV=<addr>,<len>, a MaxPayload payload and the ,<rssi>,<snr> tail.
const LineCapacity = 288

var (
	// ErrSendRejected is returned when the modem answers a command with an error.
	ErrSendRejected = errors.New("modem: command rejected")
	// ErrSendTimeout is returned when no terminal response arrives in time.
	ErrSendTimeout = errors.New("modem: response timed out")
	// ErrInitFailed is returned when Init could not apply every setting.
	ErrInitFailed = errors.New("modem: init failed")
	// ErrBusy is returned when a command is issued while another is pending.
	ErrBusy = errors.New("modem: command already in flight")
	// ErrPayload is returned for payloads the modem cannot carry.
	ErrPayload = errors.New("modem: payload too long or contains a line break")
	// ErrFrame is returned for a malformed +RCV= line.
	ErrFrame = errors.New("modem: malformed receive frame")
)

type state int

const (
	idle state = iota
	sending
)

// Stats counts driver outcomes.
type Stats struct {
	Sent     uint32
	Rejected uint32
	TimedOut uint32
	Received uint32
	Dropped  uint32
}

// Driver owns the modem channel.
type Driver struct {
	ch      *uart.Channel
	clk     clock.Clock
	log     *log.Logger
	verbose bool

	cfg     Config
	state   state
	inbound func(payload string)
	stats   Stats

	buf [LineCapacity]byte
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sends driver diagnostics to l.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithVerbose logs every line exchanged with the modem.
func WithVerbose(v bool) Option {
	return func(d *Driver) { d.verbose = v }
}

// New returns a driver for the modem on port. Until Init runs it uses
// DefaultConfig timeouts.
func New(port uart.Port, clk clock.Clock, opts ...Option) *Driver {
	d := &Driver{
		ch:  uart.NewChannel(port, line.NewSize(LineCapacity)),
		clk: clk,
		log: log.New(io.Discard, "", 0),
		cfg: DefaultConfig(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Channel returns the framed modem channel.
func (d *Driver) Channel() *uart.Channel {
	return d.ch
}

// Config returns the configuration last passed to Init.
func (d *Driver) Config() Config {
	return d.cfg
}

// Stats returns a snapshot of the counters.
func (d *Driver) Stats() Stats {
	return d.stats
}

// OnInbound registers fn to receive the payload of every +RCV= frame.
// fn may run inside Send or Command; it must not issue modem commands.
func (d *Driver) OnInbound(fn func(payload string)) {
	d.inbound = fn
}

// Init applies cfg. Each command is tried at most twice. Failures are
// logged and reported together, but the remaining commands still run.
func (d *Driver) Init(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = cfg
	var failed []string
	for _, cmd := range cfg.Commands() {
		err := d.Command(cmd, cfg.CommandTimeout)
		if err != nil && !errors.Is(err, ErrBusy) {
			d.log.Printf("[modem] %s: %v, retrying", cmd, err)
			err = d.Command(cmd, cfg.CommandTimeout)
		}
		if err != nil {
			d.log.Printf("[modem] %s: %v", cmd, err)
			failed = append(failed, cmd)
		}
	}
	if len(failed) > 0 {
		return errors.Wrap(ErrInitFailed, strings.Join(failed, "; "))
	}
	d.log.Printf("[modem] address %d network %d band %d ready", cfg.Address, cfg.NetworkID, cfg.Band)
	return nil
}

// Send transmits payload to addr and waits for the modem to confirm.
// It returns nil, ErrSendRejected or ErrSendTimeout.
func (d *Driver) Send(addr uint16, payload string) error {
	if len(payload) > MaxPayload || strings.ContainsAny(payload, "\r\n") {
		return errors.Wrapf(ErrPayload, "%d bytes", len(payload))
	}
	cmd := "AT+SEND=" + strconv.FormatUint(uint64(addr), 10) + "," + strconv.Itoa(len(payload)) + "," + payload
	err := d.Command(cmd, d.cfg.SendTimeout)
	switch {
	case err == nil:
		d.stats.Sent++
	case errors.Is(err, ErrSendRejected):
		d.stats.Rejected++
	case errors.Is(err, ErrSendTimeout):
		d.stats.TimedOut++
	}
	if err != nil {
		d.log.Printf("[modem] send to %d %q: %v", addr, payload, err)
	}
	return err
}

// Command writes one AT line and waits up to timeout for its terminal
// response, dispatching receive frames meanwhile.
func (d *Driver) Command(cmd string, timeout time.Duration) error {
	if d.state != idle {
		return ErrBusy
	}
	d.state = sending
	defer func() { d.state = idle }()

	// a late answer to an earlier timed-out command must not complete this one
	d.Poll()

	if d.verbose {
		d.log.Printf("[modem] > %s", cmd)
	}
	if err := d.ch.WriteLine(cmd); err != nil {
		return errors.Wrapf(err, "write %q", cmd)
	}
	return d.await(timeout)
}

func (d *Driver) await(timeout time.Duration) error {
	start := d.clk.Millis()
	for {
		if n, ok := d.ch.ReadLine(d.buf[:]); ok {
			l := string(d.buf[:n])
			if d.verbose {
				d.log.Printf("[modem] < %s", l)
			}
			switch {
			case IsReceiveFrame(l):
				d.dispatch(l)
			case isEcho(l):
			case IsSuccess(l):
				return nil
			case IsFailure(l):
				return errors.Wrap(ErrSendRejected, l)
			}
			continue
		}
		if clock.Elapsed(d.clk.Millis(), start, timeout) {
			return ErrSendTimeout
		}
		d.clk.Sleep(time.Millisecond)
	}
}

// Poll dispatches any receive frames that arrived while no command was
// pending. Other unsolicited lines are logged and dropped. It returns the
// number of frames dispatched.
func (d *Driver) Poll() int {
	n := 0
	for {
		k, ok := d.ch.ReadLine(d.buf[:])
		if !ok {
			return n
		}
		l := string(d.buf[:k])
		if IsReceiveFrame(l) {
			d.dispatch(l)
			n++
			continue
		}
		if d.verbose {
			d.log.Printf("[modem] unsolicited %q", l)
		}
	}
}

func (d *Driver) dispatch(l string) {
	f, err := ParseFrame(l)
	if err != nil {
		d.stats.Dropped++
		d.log.Printf("[modem] %v", err)
		return
	}
	d.stats.Received++
	if d.inbound != nil {
		d.inbound(f.Payload)
	}
}

// Probe reports whether the modem answers AT within timeout.
func (d *Driver) Probe(timeout time.Duration) bool {
	return d.Command("AT", timeout) == nil
}

// AutobaudRates is the order modem rates are tried in; 115200 is the
// factory default.
var AutobaudRates = []uint32{115200, 57600, 38400, 19200, 9600}

const (
	probeTimeout   = 500 * time.Millisecond
	autobaudBudget = 2500 * time.Millisecond
)

// Autobaud finds the modem rate by sending AT at each candidate.
func (d *Driver) Autobaud() (uint32, error) {
	rate, err := baud.Discover(d.ch, AutobaudRates, autobaudBudget, d.clk, func(r uint32) bool {
		ok := d.Probe(probeTimeout)
		if d.verbose {
			d.log.Printf("[modem] probe %d: %v", r, ok)
		}
		return ok
	})
	if err != nil {
		d.log.Printf("[modem] autobaud: %v, staying at %d", err, rate)
		return rate, err
	}
	d.log.Printf("[modem] found at %d baud", rate)
	return rate, nil
}
