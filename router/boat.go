package router

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/actuator"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/indicator"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/payload"
	"github.com/YeChamo/DroneBoatGang/uart"
)

// gpsSilence is how long the GPS may stay quiet before the status LED
// starts signalling it.
const gpsSilence = time.Second

// Boat is the boat profile: radio payloads in, actuator pulses and
// position reports out.
type Boat struct {
	cfg   BoatConfig
	radio Radio
	clk   clock.Clock
	log   *log.Logger

	throttle *actuator.Output
	rudder   *actuator.Output
	controls *ControlStore

	gps    *nmea.Receiver
	gpsCh  *uart.Channel
	gpsRx  uint32
	leds   *indicator.Bank
	mode   Mode
	outbox *Outbox
	tx     txPass

	reported   uint32 // UpdatedAt of the last fix sent
	reportedAt uint32
	sentAny    bool
	failsafe   bool
}

// NewBoat drives throttle and rudder from payloads received on radio and
// sets both to Neutral. Register HandlePayload as the radio's inbound
// handler.
func NewBoat(cfg BoatConfig, radio Radio, throttle, rudder *actuator.Output, clk clock.Clock, logger *log.Logger) *Boat {
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = 1
	}
	b := &Boat{
		cfg:      cfg,
		radio:    radio,
		clk:      clk,
		log:      discard(logger),
		throttle: throttle,
		rudder:   rudder,
		controls: NewControlStore(),
		mode:     cfg.Mode,
		outbox:   NewOutbox(cfg.OutboxSize),
		tx:       txPass{radio: radio},
	}
	b.apply()
	return b
}

// AttachGPS gives the boat a GPS channel to poll and a receiver to decode
// it with.
func (b *Boat) AttachGPS(ch *uart.Channel, rx *nmea.Receiver) {
	b.gpsCh = ch
	b.gps = rx
	b.gpsRx = b.clk.Millis()
}

// AttachLEDs gives the boat its LED bank. LED1, LED2 and LED4 show GPS
// state in GPS-report mode; digits select an LED in LED-command mode.
func (b *Boat) AttachLEDs(bank *indicator.Bank) {
	b.leds = bank
	b.setMode(b.mode)
}

// Controls returns the current setpoints.
func (b *Boat) Controls() Controls {
	return b.controls.Get()
}

// Mode returns the operating mode.
func (b *Boat) Mode() Mode {
	return b.mode
}

// Failsafe reports whether the actuators were neutralized for link loss.
func (b *Boat) Failsafe() bool {
	return b.failsafe
}

// Fix returns the boat's own position.
func (b *Boat) Fix() nmea.Fix {
	if b.gps == nil {
		return nmea.Fix{}
	}
	return b.gps.Fix()
}

func (b *Boat) apply() {
	c := b.controls.Get()
	b.throttle.SetPercent(c.Throttle)
	b.rudder.SetPercent(c.Rudder)
}

func (b *Boat) setControls(c Controls) {
	b.controls.Set(c, b.clk.Millis(), true)
	if b.failsafe {
		b.log.Printf("[boat] link restored")
		b.failsafe = false
	}
	b.apply()
}

// HandlePayload applies one payload received from the radio. It never
// transmits; replies are queued and sent by Step.
func (b *Boat) HandlePayload(p string) {
	msg, err := payload.Parse(p)
	if err != nil {
		b.log.Printf("[boat] ignore %q: %v", p, err)
		return
	}
	if msg.Kind == payload.Cmd {
		inner, err := payload.Parse(msg.Text)
		if err == nil && inner.Kind != payload.Cmd {
			b.handle(inner)
		} else {
			b.log.Printf("[boat] command %q", msg.Text)
		}
		b.outbox.Push(payload.FormatAck(msg.Text))
		return
	}
	b.handle(msg)
}

func (b *Boat) handle(msg payload.Message) {
	c := b.controls.Get()
	switch msg.Kind {
	case payload.Ctrl:
		b.setControls(Controls{Throttle: msg.Throttle, Rudder: msg.Rudder})
	case payload.Thrust:
		c.Throttle = msg.Throttle
		b.setControls(c)
	case payload.Rudder:
		c.Rudder = msg.Rudder
		b.setControls(c)
	case payload.Drive:
		b.setControls(b.drive(c, msg.Direction))
	case payload.Mode:
		b.setMode(Mode(msg.Mode))
		b.log.Printf("[boat] mode %v", b.mode)
	case payload.LED:
		b.led(msg.Digit)
	case payload.Ack:
		b.log.Printf("[boat] ack %q", msg.Text)
	default:
		b.log.Printf("[boat] unhandled %v payload", msg.Kind)
	}
}

func (b *Boat) drive(c Controls, d payload.Direction) Controls {
	step := b.cfg.DriveStep
	switch d {
	case payload.Forward:
		c.Throttle += step
	case payload.Backward:
		c.Throttle -= step
	case payload.Left:
		c.Rudder -= step
	case payload.Right:
		c.Rudder += step
	case payload.Stop:
		return Neutral
	}
	return c.Clamped()
}

func (b *Boat) led(digit int) {
	if b.leds == nil {
		return
	}
	if b.mode != ModeLEDCommand {
		// only "all off" is honoured while the LEDs show GPS state
		if digit == 0 {
			b.leds.Apply(0)
		}
		return
	}
	if !b.leds.Apply(digit) {
		b.log.Printf("[boat] LED %d ignored", digit)
	}
}

func (b *Boat) setMode(m Mode) {
	b.mode = m
	if b.leds == nil {
		return
	}
	b.leds.Apply(0)
}

// Step runs one pass of the boat loop: receive, read the GPS, check the
// failsafe, send queued replies and the GPS report, refresh the LEDs.
func (b *Boat) Step() {
	defer b.tx.end()
	b.radio.Poll()
	now := b.clk.Millis()
	if b.gpsCh != nil && b.gps.Poll(b.gpsCh) {
		b.gpsRx = now
	}
	b.checkFailsafe(now)
	b.flush()
	if err := b.report(now); err != nil && !errors.Is(err, ErrNoFix) {
		b.log.Printf("[boat] GPS report: %v", err)
	}
	b.updateLEDs(now)
}

func (b *Boat) checkFailsafe(now uint32) {
	if b.cfg.FailsafeTimeout <= 0 || b.failsafe {
		return
	}
	last, ok := b.controls.LastUpdate()
	if !ok || !clock.Elapsed(now, last, b.cfg.FailsafeTimeout) {
		return
	}
	b.failsafe = true
	b.controls.Set(Neutral, now, false)
	b.apply()
	b.log.Printf("[boat] no control for %v, failsafe", b.cfg.FailsafeTimeout)
}

// flush sends queued replies until the outbox is empty or the radio
// stalls; the rest wait for the next Step.
func (b *Boat) flush() {
	for !b.tx.stalled {
		p, ok := b.outbox.Pop()
		if !ok {
			return
		}
		if err := b.tx.send(b.cfg.Peer, p); err != nil {
			b.log.Printf("[boat] reply %q: %v", p, err)
		}
	}
}

// report sends the current fix if it is new and the interval has passed.
// A failed send is retried at the next interval.
func (b *Boat) report(now uint32) error {
	fix := b.Fix()
	if !fix.Valid {
		return ErrNoFix
	}
	if b.sentAny {
		if fix.UpdatedAt == b.reported {
			return nil
		}
		if !clock.Elapsed(now, b.reportedAt, b.cfg.GPSInterval) {
			return nil
		}
	}
	if b.tx.stalled {
		return nil
	}
	b.sentAny = true
	b.reported = fix.UpdatedAt
	b.reportedAt = now
	return b.tx.send(b.cfg.Peer, formatGPS(b.cfg.GPSE7, fix.Lat, fix.Lon))
}

// ReportNow sends the current fix regardless of the interval.
func (b *Boat) ReportNow() error {
	fix := b.Fix()
	if !fix.Valid {
		return ErrNoFix
	}
	return b.radio.Send(b.cfg.Peer, formatGPS(b.cfg.GPSE7, fix.Lat, fix.Lon))
}

func (b *Boat) updateLEDs(now uint32) {
	if b.leds == nil {
		return
	}
	if b.mode == ModeGPSReport && b.leds.Len() >= 4 {
		fix := b.leds.LED(1)
		if b.Fix().Valid {
			fix.SetPattern(indicator.On)
		} else {
			fix.SetPattern(indicator.Off)
		}
		silent := b.leds.LED(2)
		if b.gpsCh != nil && clock.Elapsed(now, b.gpsRx, gpsSilence) {
			silent.SetPattern(indicator.Heartbeat)
		} else {
			silent.SetPattern(indicator.Off)
		}
		b.leds.LED(4).SetPattern(indicator.SlowFlash)
	}
	b.leds.Update()
}
