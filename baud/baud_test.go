package baud

import (
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/uart"
)

var candidates = []uint32{115200, 57600, 38400, 19200, 9600}

func TestDiscoverFindsFirstAnsweringRate(t *testing.T) {
	clk := clock.NewManual(0)
	port := uart.NewMem(9600)
	var tried []uint32
	rate, err := Discover(port, candidates, 3*time.Second, clk, func(r uint32) bool {
		tried = append(tried, r)
		clk.Advance(500 * time.Millisecond)
		return r == 38400
	})
	if err != nil {
		t.Fatal(err)
	}
	if rate != 38400 || port.Rate() != 38400 {
		t.Fatalf("got %d (port %d) want 38400", rate, port.Rate())
	}
	if len(tried) != 3 {
		t.Fatalf("tried %v want three candidates", tried)
	}
}

func TestDiscoverStopsAtBudget(t *testing.T) {
	clk := clock.NewManual(0)
	port := uart.NewMem(9600)
	rate, err := Discover(port, candidates, 2500*time.Millisecond, clk, func(r uint32) bool {
		clk.Advance(1000 * time.Millisecond)
		return false
	})
	if !errors.Is(err, ErrNoResponse) {
		t.Fatalf("got %v want ErrNoResponse", err)
	}
	// 0 ms, 1000 ms and 2000 ms starts fit inside 2.5 s
	if rate != 38400 || port.Rate() != 38400 {
		t.Fatalf("left at %d (port %d) want last tried 38400", rate, port.Rate())
	}
}
