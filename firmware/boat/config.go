//go:build tinygo

package main

// DroneBoatGang boat configuration
// Hardware mappings and link parameters. The pin map is for the
// Grand Central M4; any board with two spare UARTs and PWM on the
// actuator pins works after editing this file.

import (
	"machine"
	"time"

	"github.com/YeChamo/DroneBoatGang/modem"
)

// --- Radio ---
const (
	BOAT_ADDRESS       = 2
	CONTROLLER_ADDRESS = 1
	NETWORK_ID         = 18
	BAND_HZ            = 915000000
	VERBOSE            = false
)

// --- Timing ---
const (
	LOOP_INTERVAL    = 5 * time.Millisecond
	GPS_INTERVAL     = 5 * time.Second
	FAILSAFE_TIMEOUT = 0 // disabled; the boat holds its last command
	// above one send timeout, the longest a Step blocks
	WATCHDOG_MS      = 8000
	CHASE_STEP       = 150 * time.Millisecond
)

// --- Hardware Mappings ---
const (
	THROTTLE_PIN = machine.D2 // ESC
	RUDDER_PIN   = machine.D3 // Rudder servo
	LED1_PIN     = machine.D4
	LED2_PIN     = machine.D5
	LED3_PIN     = machine.D6
	LED4_PIN     = machine.D7
)

// --- Hardware Interfaces ---
var (
	modemUART = machine.UART1 // RYLR896, rate found by auto-baud
	gpsUART   = machine.UART2 // NMEA receiver
	console   = machine.Serial
)

func radioConfig() modem.Config {
	cfg := modem.DefaultConfig(BOAT_ADDRESS)
	cfg.NetworkID = NETWORK_ID
	cfg.Band = BAND_HZ
	return cfg
}
