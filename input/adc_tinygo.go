//go:build tinygo

package input

import "machine"

// ADC samples a board analog pin. The machine package scales readings to
// 16 bits; Sample returns the top 12.
type ADC struct {
	adc machine.ADC
}

// NewADC configures pin for analog input.
func NewADC(pin machine.Pin) *ADC {
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &ADC{adc: a}
}

func (a *ADC) Sample() uint16 {
	return a.adc.Get() >> 4
}
