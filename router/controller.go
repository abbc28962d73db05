package router

import (
	"log"
	"strings"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/input"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/payload"
	"github.com/YeChamo/DroneBoatGang/uart"
)

// Phone replies that carry no position.
const (
	StatusStale = "STATUS,GPS_STALE"
	StatusNoGPS = "STATUS,NO_GPS"
	Connected   = "SYSTEM,CONNECTED"
	Ready       = "SYSTEM,READY"
)

// forwarded are the phone lines sent to the boat unchanged.
var forwarded = []string{"THRUST,", "RUDDER,", "GPS,", "CMD,"}

// Controller is the handheld profile. Every input source is optional:
// attach the ones the board has.
type Controller struct {
	cfg   ControllerConfig
	radio Radio
	clk   clock.Clock
	log   *log.Logger

	phone    *uart.Channel
	link     *Link
	gps      *nmea.Receiver
	gpsCh    *uart.Channel
	joystick *input.Joystick
	button   *input.Debouncer

	remote  nmea.Fix
	lastJoy uint32
	joyRun  bool
	inbox   *Outbox
	tx      txPass

	positionDue bool
}

// NewController sends to the boat over radio. Register HandleInbound as
// the radio's inbound handler.
func NewController(cfg ControllerConfig, radio Radio, clk clock.Clock, logger *log.Logger) *Controller {
	return &Controller{
		cfg:   cfg,
		radio: radio,
		clk:   clk,
		log:   discard(logger),
		link:  NewLink(nil, clk),
		inbox: NewOutbox(8),
		tx:    txPass{radio: radio},
	}
}

// AttachPhone connects the Bluetooth serial channel. state is the
// module's STATE pin; it is ignored when IgnoreLinkState is set or nil.
func (c *Controller) AttachPhone(ch *uart.Channel, state input.Pin) {
	c.phone = ch
	if c.cfg.IgnoreLinkState {
		state = nil
	}
	c.link = NewLink(state, c.clk)
}

// AttachGPS gives the controller its own GPS.
func (c *Controller) AttachGPS(ch *uart.Channel, rx *nmea.Receiver) {
	c.gpsCh = ch
	c.gps = rx
}

// AttachJoystick enables the CTRL stream.
func (c *Controller) AttachJoystick(j *input.Joystick) {
	c.joystick = j
}

// AttachButton enables the send-position button.
func (c *Controller) AttachButton(d *input.Debouncer) {
	c.button = d
}

// Start announces the controller to an already connected phone.
func (c *Controller) Start() {
	if c.phone != nil && c.link.Connected() {
		c.toPhone(Ready)
	}
}

// LocalFix returns the controller's own position.
func (c *Controller) LocalFix() nmea.Fix {
	if c.gps == nil {
		return nmea.Fix{}
	}
	return c.gps.Fix()
}

// RemoteFix returns the last position received from the boat.
func (c *Controller) RemoteFix() nmea.Fix {
	return c.remote
}

// Fix returns the most recent of the local and remote fixes.
func (c *Controller) Fix() nmea.Fix {
	return nmea.Newer(c.clk.Millis(), c.remote, c.LocalFix())
}

// JoystickActive reports whether the stick moved recently.
func (c *Controller) JoystickActive() bool {
	return c.joystick != nil && c.joystick.Active()
}

// HandleInbound records a payload received from the boat for the phone.
// Payloads are delivered by Step, outside any pending send. Positions are
// passed on in the six-decimal form whichever form the boat used.
func (c *Controller) HandleInbound(p string) {
	if msg, err := payload.Parse(p); err == nil && msg.Kind == payload.GPS {
		c.remote = nmea.Fix{Valid: true, Lat: msg.Lat, Lon: msg.Lon, UpdatedAt: c.clk.Millis()}
		p = payload.FormatGPS(msg.Lat, msg.Lon)
	}
	c.inbox.Push(p)
}

// HandlePhoneLine answers or forwards one line from the phone.
func (c *Controller) HandlePhoneLine(l string) error {
	l = strings.TrimSpace(l)
	switch l {
	case "":
		return nil
	case "PING":
		c.toPhone("PONG")
		return nil
	case "STATUS":
		c.status()
		return nil
	}
	for _, prefix := range forwarded {
		if strings.HasPrefix(l, prefix) {
			return c.send(l)
		}
	}
	return c.send(payload.Wrap(l))
}

func (c *Controller) status() {
	fix := c.Fix()
	switch {
	case fix.Fresh(c.clk.Millis(), c.cfg.FreshFix):
		c.toPhone(payload.FormatGPS(fix.Lat, fix.Lon))
	case fix.Valid:
		c.toPhone(StatusStale)
	default:
		c.toPhone(StatusNoGPS)
	}
}

func (c *Controller) send(p string) error {
	if err := c.tx.send(c.cfg.Peer, p); err != nil {
		c.log.Printf("[ctrl] send %q: %v", p, err)
		return err
	}
	return nil
}

// toPhone writes one line to the phone while it is connected.
func (c *Controller) toPhone(l string) {
	if c.phone == nil || !c.link.Connected() {
		return
	}
	if err := c.phone.WriteLine(l); err != nil {
		c.log.Printf("[ctrl] phone: %v", err)
	}
}

// SendPosition transmits the local fix to the boat.
func (c *Controller) SendPosition() error {
	fix := c.LocalFix()
	if !fix.Valid {
		return ErrNoFix
	}
	return c.send(formatGPS(c.cfg.GPSE7, fix.Lat, fix.Lon))
}

// Step runs one pass of the controller loop.
//
// Radio sends stop for the rest of a pass once one times out; whatever was
// not sent carries over to the next pass.
func (c *Controller) Step() {
	defer c.tx.end()
	if c.phone != nil {
		c.pollLink()
	}
	c.radio.Poll()
	now := c.clk.Millis()

	for {
		p, ok := c.inbox.Pop()
		if !ok {
			break
		}
		c.toPhone(p)
	}
	if c.gpsCh != nil {
		c.gps.Poll(c.gpsCh)
	}
	if c.phone != nil {
		c.readPhone()
	}
	if c.button != nil && c.button.Pressed() {
		c.positionDue = true
	}
	if c.positionDue && !c.tx.stalled {
		c.positionDue = false
		if err := c.SendPosition(); err != nil {
			c.log.Printf("[ctrl] position: %v", err)
		}
	}
	if c.joystick != nil && !c.tx.stalled && (!c.joyRun || clock.Elapsed(now, c.lastJoy, c.cfg.JoystickInterval)) {
		c.joyRun = true
		c.lastJoy = now
		thr, rud := c.joystick.Read()
		c.send(payload.FormatCtrl(thr, rud))
	}
}

func (c *Controller) pollLink() {
	if !c.link.Poll() {
		return
	}
	c.log.Printf("[ctrl] phone connected")
	c.toPhone(Connected)
	if fix := c.Fix(); fix.Fresh(c.clk.Millis(), c.cfg.FreshFix) {
		c.toPhone(payload.FormatGPS(fix.Lat, fix.Lon))
	}
}

func (c *Controller) readPhone() {
	for !c.tx.stalled {
		l, ok := c.phone.ReadString()
		if !ok {
			return
		}
		c.HandlePhoneLine(l)
	}
}
