//go:build !tinygo

package uart

import (
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// SerialPort is a Port backed by a host serial device, typically a USB
// adapter wired to the modem, the GPS or the Bluetooth module. A reader
// goroutine fills the receive ring.
type SerialPort struct {
	name string
	rx   Ring

	mu   sync.Mutex
	port serial.Port

	done chan struct{}
	wg   sync.WaitGroup
	log  *log.Logger
}

// OpenSerial opens name at baud, 8N1.
func OpenSerial(name string, baud uint32, logger *log.Logger) (*SerialPort, error) {
	p, err := serial.Open(name, mode(baud))
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", name)
	}
	if err := p.SetReadTimeout(50 * time.Millisecond); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "can't set read timeout on %s", name)
	}
	s := &SerialPort{
		name: name,
		port: p,
		done: make(chan struct{}),
		log:  logger,
	}
	s.wg.Add(1)
	go s.rxLoop()
	return s, nil
}

func mode(baud uint32) *serial.Mode {
	return &serial.Mode{
		BaudRate: int(baud),
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

func (s *SerialPort) rxLoop() {
	defer s.wg.Done()
	var buf [64]byte
	for {
		select {
		case <-s.done:
			return
		default:
		}
		n, err := s.port.Read(buf[:])
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if s.log != nil {
				s.log.Printf("[%s] read: %v", s.name, err)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		for _, b := range buf[:n] {
			s.rx.Put(b)
		}
	}
}

func (s *SerialPort) Read(p []byte) (int, error) {
	return s.rx.Read(p), nil
}

func (s *SerialPort) Buffered() int {
	return s.rx.Used()
}

func (s *SerialPort) Overrun() bool {
	return s.rx.Overrun()
}

func (s *SerialPort) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.port.Write(p)
	if err != nil {
		return n, errors.Wrapf(err, "can't write %s", s.name)
	}
	return n, nil
}

func (s *SerialPort) SetBaudRate(br uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.port.SetMode(mode(br)); err != nil {
		return errors.Wrapf(err, "%s", s.name)
	}
	if err := s.port.ResetInputBuffer(); err != nil {
		return errors.Wrapf(err, "%s", s.name)
	}
	s.rx.Clear()
	return nil
}

// Name returns the device path.
func (s *SerialPort) Name() string {
	return s.name
}

// Close stops the reader and closes the device.
func (s *SerialPort) Close() error {
	close(s.done)
	err := s.port.Close()
	s.wg.Wait()
	return err
}
