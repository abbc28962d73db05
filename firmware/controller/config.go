//go:build tinygo

package main

// DroneBoatGang controller configuration
// Pin map for the Grand Central M4: joystick on A0/A1, GPS button on D8,
// Bluetooth module STATE on D9.

import (
	"machine"
	"time"

	"github.com/YeChamo/DroneBoatGang/modem"
)

// --- Radio ---
const (
	CONTROLLER_ADDRESS = 1
	BOAT_ADDRESS       = 2
	NETWORK_ID         = 18
	BAND_HZ            = 915000000
	VERBOSE            = false
)

// --- Phone ---
const (
	PHONE_BAUD        = 9600 // JDY-31 default
	IGNORE_LINK_STATE = false
)

// --- Timing ---
const (
	LOOP_INTERVAL     = 5 * time.Millisecond
	JOYSTICK_INTERVAL = 200 * time.Millisecond
	// above one send timeout, the longest a Step blocks
	WATCHDOG_MS       = 8000
)

// --- Hardware Mappings ---
const (
	THRUST_ADC_PIN = machine.A0
	RUDDER_ADC_PIN = machine.A1
	GPS_BUTTON_PIN = machine.D8
	BT_STATE_PIN   = machine.D9
	STATUS_LED_PIN = machine.LED
)

// --- Hardware Interfaces ---
var (
	modemUART = machine.UART1
	gpsUART   = machine.UART2
	phoneUART = machine.UART3
	console   = machine.Serial
)

func radioConfig() modem.Config {
	cfg := modem.DefaultConfig(CONTROLLER_ADDRESS)
	cfg.NetworkID = NETWORK_ID
	cfg.Band = BAND_HZ
	return cfg
}
