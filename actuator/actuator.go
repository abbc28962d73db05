// Package actuator drives the throttle ESC and the rudder servo with
// standard 50 Hz servo pulses.
package actuator

import (
	"github.com/YeChamo/DroneBoatGang/mapping"
)

const (
	FrequencyHz   = 50
	PeriodUS      = 1000000 / FrequencyHz
	MinPulseUS    = 1000 // 0 %
	CenterPulseUS = 1500 // 50 %
	MaxPulseUS    = 2000 // 100 %
)

// PulseWidth converts a percent to a pulse width, clamping to 0..100.
func PulseWidth(pct int) uint32 {
	return MinPulseUS + 10*uint32(mapping.Constrain(pct, 0, 100))
}

// Duty converts a pulse width to a compare value for a PWM whose counter
// tops out at top over one PeriodUS cycle.
func Duty(pulseUS, top uint32) uint32 {
	return uint32(uint64(pulseUS) * uint64(top) / PeriodUS)
}

// Servo accepts a pulse width in microseconds.
type Servo interface {
	SetMicroseconds(us int16)
}

// PWM is the part of a PWM peripheral a Channel needs.
type PWM interface {
	Top() uint32
	Set(channel uint8, value uint32)
}

// Channel is one output of a PWM peripheral running at FrequencyHz.
type Channel struct {
	pwm PWM
	ch  uint8
}

// NewChannel wraps channel ch of pwm, which must already be configured
// for a PeriodUS period.
func NewChannel(pwm PWM, ch uint8) *Channel {
	return &Channel{pwm: pwm, ch: ch}
}

func (c *Channel) SetMicroseconds(us int16) {
	if us < 0 {
		us = 0
	}
	c.pwm.Set(c.ch, Duty(uint32(us), c.pwm.Top()))
}

// Output writes percent setpoints to a servo.
type Output struct {
	servo Servo
	pct   int
	pulse uint32
}

// NewOutput drives servo and immediately writes pct.
func NewOutput(servo Servo, pct int) *Output {
	o := &Output{servo: servo}
	o.SetPercent(pct)
	return o
}

// SetPercent clamps pct, writes the pulse and returns its width.
func (o *Output) SetPercent(pct int) uint32 {
	o.pct = mapping.Constrain(pct, 0, 100)
	o.pulse = PulseWidth(o.pct)
	o.servo.SetMicroseconds(int16(o.pulse))
	return o.pulse
}

// Percent returns the last clamped setpoint.
func (o *Output) Percent() int {
	return o.pct
}

// Pulse returns the last pulse width written.
func (o *Output) Pulse() uint32 {
	return o.pulse
}

// Recorder is a Servo that remembers every pulse, for hosts without PWM
// hardware and for tests. OnChange, when set, sees each new width.
type Recorder struct {
	Pulses   []int16
	OnChange func(us int16)
}

func (r *Recorder) SetMicroseconds(us int16) {
	if n := len(r.Pulses); n > 0 && r.Pulses[n-1] == us {
		return
	}
	r.Pulses = append(r.Pulses, us)
	if r.OnChange != nil {
		r.OnChange(us)
	}
}

// Last returns the most recent pulse, or zero.
func (r *Recorder) Last() int16 {
	if len(r.Pulses) == 0 {
		return 0
	}
	return r.Pulses[len(r.Pulses)-1]
}
