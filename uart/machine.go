//go:build tinygo

package uart

import (
	"machine"

	"github.com/pkg/errors"
)

// MachinePort adapts a board UART. Its receive ring is filled by the UART
// interrupt handler in the machine package.
type MachinePort struct {
	*machine.UART
}

// NewMachinePort configures u and returns it as a Port.
func NewMachinePort(u *machine.UART, cfg machine.UARTConfig) (*MachinePort, error) {
	if err := u.Configure(cfg); err != nil {
		return nil, errors.Wrap(err, "configure uart")
	}
	return &MachinePort{UART: u}, nil
}

func (p *MachinePort) SetBaudRate(br uint32) error {
	p.UART.SetBaudRate(br)
	return nil
}
