package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/YeChamo/DroneBoatGang/actuator"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/modem"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/router"
	"github.com/YeChamo/DroneBoatGang/uart"
)

const loopInterval = 5 * time.Millisecond

// node is what the main loop drives.
type node interface {
	Step()
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
}

// radioConfig reads the radio flags.
func radioConfig(c *cli.Context) (modem.Config, error) {
	cfg := modem.DefaultConfig(uint16(c.Uint("address")))
	cfg.NetworkID = uint8(c.Uint("network"))
	cfg.Band = uint32(c.Uint("band"))
	p, err := modem.ParseParameters(c.String("parameters"))
	if err != nil {
		return cfg, err
	}
	cfg.Parameters = p
	return cfg, cfg.Validate()
}

// openModem opens, finds and configures the modem port.
func openModem(c *cli.Context, clk clock.Clock, logger *log.Logger) (*modem.Driver, *uart.SerialPort, error) {
	name := c.String("modem")
	if name == "" {
		return nil, nil, errors.New("--modem is required")
	}
	cfg, err := radioConfig(c)
	if err != nil {
		return nil, nil, err
	}
	baud := uint32(c.Uint("modem-baud"))
	start := baud
	if start == 0 {
		start = modem.AutobaudRates[0]
	}
	port, err := uart.OpenSerial(name, start, logger)
	if err != nil {
		return nil, nil, err
	}
	drv := modem.New(port, clk, modem.WithLogger(logger), modem.WithVerbose(c.GlobalBool("verbose")))
	configureModem(drv, cfg, baud == 0, name, logger)
	return drv, port, nil
}

// configureModem runs rate discovery when asked, then Init. Neither
// failure is fatal: a silent modem stays at the last rate tried and a
// partly configured one can still carry traffic.
func configureModem(drv *modem.Driver, cfg modem.Config, autobaud bool, name string, logger *log.Logger) {
	if autobaud {
		br, err := drv.Autobaud()
		if err != nil {
			logger.Printf("modem on %s silent, staying at %d baud", name, br)
		} else {
			logger.Printf("modem on %s at %d baud", name, br)
		}
	}
	if err := drv.Init(cfg); err != nil {
		logger.Printf("modem init: %v", err)
	}
}

// openGPS opens the GPS port if one is named; both results are nil when
// none is.
func openGPS(c *cli.Context, clk clock.Clock, logger *log.Logger) (*uart.Channel, *uart.SerialPort, error) {
	name := c.String("gps")
	if name == "" {
		return nil, nil, nil
	}
	baud := uint32(c.Uint("gps-baud"))
	start := baud
	if start == 0 {
		start = nmea.AutobaudRates[0]
	}
	port, err := uart.OpenSerial(name, start, logger)
	if err != nil {
		return nil, nil, err
	}
	ch := uart.NewChannel(port, line.NewAnchored('$'))
	if baud == 0 {
		br, err := nmea.Autobaud(ch, clk)
		if err != nil {
			logger.Printf("GPS on %s silent, staying at %d baud", name, br)
		} else {
			logger.Printf("GPS on %s at %d baud", name, br)
		}
	}
	return ch, port, nil
}

func pulseLogger(logger *log.Logger, name string) *actuator.Recorder {
	return &actuator.Recorder{OnChange: func(us int16) {
		logger.Printf("%s %d us", name, us)
	}}
}

func runBoat(c *cli.Context) error {
	logger := newLogger()
	clk := clock.NewSystem()

	drv, modemPort, err := openModem(c, clk, logger)
	if err != nil {
		return err
	}
	defer modemPort.Close()
	gpsCh, gpsPort, err := openGPS(c, clk, logger)
	if err != nil {
		return err
	}
	if gpsPort != nil {
		defer gpsPort.Close()
	}

	cfg := router.DefaultBoatConfig()
	cfg.Peer = uint16(c.Uint("peer"))
	cfg.GPSInterval = c.Duration("gps-interval")
	cfg.FailsafeTimeout = c.Duration("failsafe")
	cfg.GPSE7 = c.Bool("e7")

	throttle := actuator.NewOutput(pulseLogger(logger, "throttle"), router.Neutral.Throttle)
	rudder := actuator.NewOutput(pulseLogger(logger, "rudder"), router.Neutral.Rudder)
	boat := router.NewBoat(cfg, drv, throttle, rudder, clk, logger)
	if gpsCh != nil {
		boat.AttachGPS(gpsCh, nmea.NewReceiver(clk, logger))
	}
	drv.OnInbound(boat.HandlePayload)

	return loop(boat, newConsole(drv))
}

func runController(c *cli.Context) error {
	logger := newLogger()
	clk := clock.NewSystem()

	drv, modemPort, err := openModem(c, clk, logger)
	if err != nil {
		return err
	}
	defer modemPort.Close()
	gpsCh, gpsPort, err := openGPS(c, clk, logger)
	if err != nil {
		return err
	}
	if gpsPort != nil {
		defer gpsPort.Close()
	}

	cfg := router.DefaultControllerConfig()
	cfg.Peer = uint16(c.Uint("peer"))
	cfg.GPSE7 = c.Bool("e7")
	// no STATE pin on a serial adapter
	cfg.IgnoreLinkState = true
	ctrl := router.NewController(cfg, drv, clk, logger)
	if gpsCh != nil {
		ctrl.AttachGPS(gpsCh, nmea.NewReceiver(clk, logger))
	}
	if name := c.String("phone"); name != "" {
		phone, err := uart.OpenSerial(name, uint32(c.Uint("phone-baud")), logger)
		if err != nil {
			return err
		}
		defer phone.Close()
		ctrl.AttachPhone(uart.NewChannel(phone, line.NewSize(modem.MaxPayload)), nil)
	}
	drv.OnInbound(ctrl.HandleInbound)
	ctrl.Start()

	return loop(ctrl, newConsole(drv))
}

// newConsole serves the debug console on stdin and stdout.
func newConsole(drv *modem.Driver) *router.Console {
	return router.NewConsole(uart.NewChannel(newStdio(), line.New()), drv, time.Second)
}

// loop steps n until interrupted.
func loop(n node, term *router.Console) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	t := time.NewTicker(loopInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		n.Step()
		if term != nil {
			term.Poll()
		}
	}
}
