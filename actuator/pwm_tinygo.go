//go:build tinygo

package actuator

import (
	"machine"

	"github.com/pkg/errors"
	"github.com/sparques/pwm"
)

// NewPinChannel sets up pin as a 50 Hz servo output on whichever PWM
// peripheral serves it.
func NewPinChannel(pin machine.Pin) (*Channel, error) {
	pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	group := pwm.Get(pin)
	if err := group.Configure(machine.PWMConfig{Period: PeriodUS * 1000}); err != nil {
		return nil, errors.Wrapf(err, "configure pwm for pin %d", pin)
	}
	ch, err := group.Channel(pin)
	if err != nil {
		return nil, errors.Wrapf(err, "pwm channel for pin %d", pin)
	}
	return NewChannel(group, ch), nil
}
