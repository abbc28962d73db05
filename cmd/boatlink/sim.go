package main

import (
	"time"

	"github.com/urfave/cli"

	"github.com/YeChamo/DroneBoatGang/actuator"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/modem"
	"github.com/YeChamo/DroneBoatGang/modem/modemsim"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/router"
	"github.com/YeChamo/DroneBoatGang/uart"
)

const (
	simBoat       = 2
	simController = 1
)

// gpsFeed plays a GPS module drifting slowly north, one sentence a second.
type gpsFeed struct {
	port     *uart.Mem
	lat, lon float64
	last     time.Time
}

func (g *gpsFeed) Step() {
	now := time.Now()
	if now.Sub(g.last) < time.Second {
		return
	}
	g.last = now
	g.lat += 0.00001
	g.port.Inject(nmea.FormatRMC(now, g.lat, g.lon) + "\r\n")
}

// sim is a boat and a controller on simulated radios. The terminal is the
// phone: typed lines go to the controller and its replies are printed.
type sim struct {
	boat *router.Boat
	ctrl *router.Controller
	feed *gpsFeed
}

func newSim(c *cli.Context, clk clock.Clock, phone uart.Port) (*sim, error) {
	logger := newLogger()
	verbose := c.GlobalBool("verbose")
	air := modemsim.NewAir()

	boatPort, ctrlPort := uart.NewMem(115200), uart.NewMem(115200)
	air.Attach(boatPort)
	air.Attach(ctrlPort)
	boatRadio := modem.New(boatPort, clk, modem.WithLogger(logger), modem.WithVerbose(verbose))
	ctrlRadio := modem.New(ctrlPort, clk, modem.WithLogger(logger), modem.WithVerbose(verbose))
	if err := boatRadio.Init(modem.DefaultConfig(simBoat)); err != nil {
		return nil, err
	}
	if err := ctrlRadio.Init(modem.DefaultConfig(simController)); err != nil {
		return nil, err
	}

	bcfg := router.DefaultBoatConfig()
	bcfg.Peer = simController
	bcfg.GPSInterval = c.Duration("gps-interval")
	throttle := actuator.NewOutput(pulseLogger(logger, "throttle"), router.Neutral.Throttle)
	rudder := actuator.NewOutput(pulseLogger(logger, "rudder"), router.Neutral.Rudder)
	boat := router.NewBoat(bcfg, boatRadio, throttle, rudder, clk, logger)
	gpsPort := uart.NewMem(9600)
	boat.AttachGPS(uart.NewChannel(gpsPort, line.NewAnchored('$')), nmea.NewReceiver(clk, logger))
	boatRadio.OnInbound(boat.HandlePayload)

	ccfg := router.DefaultControllerConfig()
	ccfg.Peer = simBoat
	ccfg.IgnoreLinkState = true
	ctrl := router.NewController(ccfg, ctrlRadio, clk, logger)
	ctrl.AttachPhone(uart.NewChannel(phone, line.NewSize(modem.MaxPayload)), nil)
	ctrlRadio.OnInbound(ctrl.HandleInbound)

	return &sim{
		boat: boat,
		ctrl: ctrl,
		feed: &gpsFeed{port: gpsPort, lat: c.Float64("lat"), lon: c.Float64("lon")},
	}, nil
}

func (s *sim) Step() {
	s.feed.Step()
	s.boat.Step()
	s.ctrl.Step()
}

func runSim(c *cli.Context) error {
	s, err := newSim(c, clock.NewSystem(), newStdio())
	if err != nil {
		return err
	}
	s.ctrl.Start()
	return loop(s, nil)
}
