// Package input turns the controller's analog stick and buttons into
// control values.
package input

import (
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/mapping"
)

// 12-bit stick geometry. Pushing the thrust stick forward lowers its
// reading toward 0.
const (
	ADCMax         = 4095
	ADCCenter      = 2048
	ThrustDeadband = 100
	RudderDeadband = 100

	ThrustStep = 10

	// ActivityTimeout is how long the stick counts as in use after it last
	// left center.
	ActivityTimeout = 2 * time.Second
)

// Thrust maps the forward half of the stick to 0..100 in ThrustStep steps.
// Anything at or behind the deadband edge is 0.
func Thrust(adc uint16) int {
	edge := ADCCenter - ThrustDeadband
	if int(adc) >= edge {
		return 0
	}
	travel := ADCMax - (ADCCenter + ThrustDeadband)
	raw := mapping.Constrain((edge-int(adc))*100/travel, 0, 100)
	return mapping.Constrain((raw+ThrustStep/2)/ThrustStep*ThrustStep, 0, 100)
}

// Rudder maps the full stick travel to 0..100, snapping to 50 inside the
// deadband.
func Rudder(adc uint16) int {
	if mapping.Deadband(int(adc), ADCCenter, RudderDeadband) {
		return 50
	}
	return mapping.Constrain(mapping.Range(int(adc), 0, ADCMax, 0, 100), 0, 100)
}

// Sampler reads one 12-bit analog channel.
type Sampler interface {
	Sample() uint16
}

// Joystick reads a thrust and a rudder axis.
type Joystick struct {
	thrust Sampler
	rudder Sampler
	clk    clock.Clock

	lastActive uint32
	touched    bool
}

// NewJoystick returns a joystick over the two axes.
func NewJoystick(thrust, rudder Sampler, clk clock.Clock) *Joystick {
	return &Joystick{thrust: thrust, rudder: rudder, clk: clk}
}

// Read samples both axes.
func (j *Joystick) Read() (thrust, rudder int) {
	thrust = Thrust(j.thrust.Sample())
	rudder = Rudder(j.rudder.Sample())
	if thrust != 0 || rudder != 50 {
		j.lastActive = j.clk.Millis()
		j.touched = true
	}
	return thrust, rudder
}

// Active reports whether the stick left center within ActivityTimeout.
func (j *Joystick) Active() bool {
	return j.touched && !clock.Elapsed(j.clk.Millis(), j.lastActive, ActivityTimeout)
}
