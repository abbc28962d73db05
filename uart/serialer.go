//go:build tinygo

package uart

import "machine"

// SerialerPort adapts the board console (USB CDC or the default UART) to
// Port. The console rate is fixed, so SetBaudRate does nothing.
type SerialerPort struct {
	machine.Serialer
}

func NewSerialerPort(s machine.Serialer) *SerialerPort {
	return &SerialerPort{Serialer: s}
}

func (p *SerialerPort) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) && p.Buffered() > 0 {
		c, err := p.ReadByte()
		if err != nil {
			return n, err
		}
		b[n] = c
		n++
	}
	return n, nil
}

func (p *SerialerPort) SetBaudRate(uint32) error {
	return nil
}
