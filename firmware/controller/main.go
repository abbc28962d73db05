//go:build tinygo

// Command controller is the handheld firmware: joystick and phone in,
// radio commands out, boat telemetry relayed to the phone.
package main

import (
	"log"
	"machine"
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/indicator"
	"github.com/YeChamo/DroneBoatGang/input"
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
)

type nodeState int

var watchdog = machine.Watchdog

func main() {
	time.Sleep(2 * time.Second)
	println("DroneBoatGang controller - Version", Version)

	clk := clock.NewSystem()
	debug := uart.NewSerialerPort(console)
	logger := log.New(debug, "", 0)

	var (
		ctrl   *router.Controller
		term   *router.Console
		status *indicator.LED
		ticker = time.NewTicker(LOOP_INTERVAL)
	)
	defer ticker.Stop()

	state := INITIALIZATION
	println("Entering INITIALIZATION state...")
	for {
		<-ticker.C

		switch state {
		case INITIALIZATION:
			STATUS_LED_PIN.Configure(machine.PinConfig{Mode: machine.PinOutput})
			status = indicator.NewLED(STATUS_LED_PIN, clk)
			status.SetPattern(indicator.FastFlash)

			// --- Inputs ---
			machine.InitADC()
			stick := input.NewJoystick(input.NewADC(THRUST_ADC_PIN), input.NewADC(RUDDER_ADC_PIN), clk)
			GPS_BUTTON_PIN.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
			BT_STATE_PIN.Configure(machine.PinConfig{Mode: machine.PinInput})
			println("Joystick and buttons configured.")

			// --- Radio ---
			modemPort, err := uart.NewMachinePort(modemUART, machine.UARTConfig{BaudRate: modem.AutobaudRates[0]})
			if err != nil {
				halt("modem UART:", err)
			}
			radio := modem.New(modemPort, clk, modem.WithLogger(logger), modem.WithVerbose(VERBOSE))
			if br, err := radio.Autobaud(); err != nil {
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

			// --- Phone ---
			phonePort, err := uart.NewMachinePort(phoneUART, machine.UARTConfig{BaudRate: PHONE_BAUD})
			if err != nil {
				halt("phone UART:", err)
			}

			cfg := router.DefaultControllerConfig()
			cfg.Peer = BOAT_ADDRESS
			cfg.JoystickInterval = JOYSTICK_INTERVAL
			cfg.IgnoreLinkState = IGNORE_LINK_STATE
			ctrl = router.NewController(cfg, radio, clk, logger)
			ctrl.AttachGPS(gpsCh, nmea.NewReceiver(clk, logger))
			ctrl.AttachPhone(uart.NewChannel(phonePort, line.NewSize(modem.MaxPayload)), BT_STATE_PIN)
			ctrl.AttachJoystick(stick)
			ctrl.AttachButton(input.NewDebouncer(GPS_BUTTON_PIN, clk))
			radio.OnInbound(ctrl.HandleInbound)
			ctrl.Start()

			term = router.NewConsole(uart.NewChannel(debug, line.New()), radio, time.Second)

			watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: WATCHDOG_MS})
			watchdog.Start()

			status.SetPattern(indicator.Heartbeat)
			println("Initialization complete. Entering RUNNING state...")
			state = RUNNING

		case RUNNING:
			ctrl.Step()
			term.Poll()
			if ctrl.JoystickActive() {
				status.SetPattern(indicator.On)
			} else {
				status.SetPattern(indicator.Heartbeat)
			}
			status.Update()

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
