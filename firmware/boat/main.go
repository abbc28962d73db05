//go:build tinygo

// Command boat is the boat firmware: it steers the motor and rudder from
// controller commands and reports its GPS position back.
package main

import (
	"log"
	"machine"
	"time"

	"github.com/YeChamo/DroneBoatGang/actuator"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/indicator"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/modem"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/router"
	"github.com/YeChamo/DroneBoatGang/uart"
)

const Version = "0.1.0"

// State machine states
const (
	INITIALIZATION nodeState = iota
	RUNNING
	FAILSAFE
)

type nodeState int

var watchdog = machine.Watchdog

func main() {
	time.Sleep(2 * time.Second)
	println("DroneBoatGang boat - Version", Version)

	clk := clock.NewSystem()
	debug := uart.NewSerialerPort(console)
	logger := log.New(debug, "", 0)

	var (
		boat   *router.Boat
		radio  *modem.Driver
		term   *router.Console
		ticker = time.NewTicker(LOOP_INTERVAL)
	)
	defer ticker.Stop()

	state := INITIALIZATION
	println("Entering INITIALIZATION state...")
	for {
		<-ticker.C

		switch state {
		case INITIALIZATION:
			// --- Actuators first, so the ESC sees a stopped motor at once ---
			thrCh, err := actuator.NewPinChannel(THROTTLE_PIN)
			if err != nil {
				halt("throttle PWM:", err)
			}
			rudCh, err := actuator.NewPinChannel(RUDDER_PIN)
			if err != nil {
				halt("rudder PWM:", err)
			}
			throttle := actuator.NewOutput(thrCh, router.Neutral.Throttle)
			rudder := actuator.NewOutput(rudCh, router.Neutral.Rudder)
			println("PWM configured for ESC and rudder.")

			var leds []*indicator.LED
			for _, pin := range []machine.Pin{LED1_PIN, LED2_PIN, LED3_PIN, LED4_PIN} {
				pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
				leds = append(leds, indicator.NewLED(pin, clk))
			}
			bank := indicator.NewBank(leds...)
			bank.Chase(clk, CHASE_STEP)

			// --- Radio ---
			modemPort, err := uart.NewMachinePort(modemUART, machine.UARTConfig{BaudRate: modem.AutobaudRates[0]})
			if err != nil {
				halt("modem UART:", err)
			}
			radio = modem.New(modemPort, clk, modem.WithLogger(logger), modem.WithVerbose(VERBOSE))
			br, err := radio.Autobaud()
			if err != nil {
				println("modem did not answer, staying at", br)
			} else {
				println("modem found at", br)
			}
			if err := radio.Init(radioConfig()); err != nil {
				println("modem init:", err.Error())
			}

			// --- GPS ---
			gpsPort, err := uart.NewMachinePort(gpsUART, machine.UARTConfig{BaudRate: nmea.AutobaudRates[0]})
			if err != nil {
				halt("GPS UART:", err)
			}
			gpsCh := uart.NewChannel(gpsPort, line.NewAnchored('$'))
			if br, err := nmea.Autobaud(gpsCh, clk); err != nil {
				println("GPS silent, staying at", br)
			} else {
				println("GPS found at", br)
			}

			cfg := router.DefaultBoatConfig()
			cfg.Peer = CONTROLLER_ADDRESS
			cfg.GPSInterval = GPS_INTERVAL
			cfg.FailsafeTimeout = FAILSAFE_TIMEOUT
			boat = router.NewBoat(cfg, radio, throttle, rudder, clk, logger)
			boat.AttachGPS(gpsCh, nmea.NewReceiver(clk, logger))
			boat.AttachLEDs(bank)
			radio.OnInbound(boat.HandlePayload)

			term = router.NewConsole(uart.NewChannel(debug, line.New()), radio, time.Second)

			watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: WATCHDOG_MS})
			watchdog.Start()

			println("Initialization complete. Entering RUNNING state...")
			state = RUNNING

		case RUNNING:
			boat.Step()
			term.Poll()
			if boat.Failsafe() {
				println("Link lost. Entering FAILSAFE state...")
				state = FAILSAFE
			}

		case FAILSAFE:
			// the boat has already neutralized its outputs; wait for control
			boat.Step()
			term.Poll()
			if !boat.Failsafe() {
				println("Link restored. Entering RUNNING state...")
				state = RUNNING
			}

		default:
			state = RUNNING
		}

		watchdog.Update()
	}
}

// halt stops on a peripheral that cannot be set up.
func halt(what string, err error) {
	for {
		println(what, err.Error())
		time.Sleep(time.Second)
	}
}
