package main

import (
	"bufio"
	"os"

	"github.com/YeChamo/DroneBoatGang/uart"
)

// stdio is a uart.Port over the terminal, for the debug console and the
// simulated phone.
type stdio struct {
	rx uart.Ring
}

func newStdio() *stdio {
	s := &stdio{}
	go s.readLoop()
	return s
}

func (s *stdio) readLoop() {
	r := bufio.NewReader(os.Stdin)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		s.rx.Put(b)
	}
}

func (s *stdio) Read(p []byte) (int, error) {
	return s.rx.Read(p), nil
}

func (s *stdio) Buffered() int {
	return s.rx.Used()
}

func (s *stdio) Overrun() bool {
	return s.rx.Overrun()
}

func (s *stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (s *stdio) SetBaudRate(uint32) error {
	return nil
}
