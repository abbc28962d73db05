// Command boatlink runs a boat or controller node on a PC with USB serial
// adapters, or both nodes against simulated radios for bench testing.
package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli"
)

const version = "0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "boatlink"
	app.Usage = "run a DroneBoatGang node over serial adapters"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:   "verbose",
			Usage:  "log every modem line",
			EnvVar: "BOATLINK_VERBOSE",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "boat",
			Usage:  "run the boat profile; actuator pulses are logged",
			Flags:  append(radioFlags(2, 1), boatFlags()...),
			Action: runBoat,
		},
		{
			Name:   "controller",
			Usage:  "run the controller profile with an optional phone link",
			Flags:  append(radioFlags(1, 2), controllerFlags()...),
			Action: runController,
		},
		{
			Name:   "sim",
			Usage:  "run both nodes over simulated radios; stdin is the phone",
			Flags:  simFlags(),
			Action: runSim,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func radioFlags(address, peer uint) []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "modem",
			Usage:  "modem serial port",
			EnvVar: "BOATLINK_MODEM",
		},
		cli.UintFlag{
			Name:   "modem-baud",
			Usage:  "modem baud rate; 0 finds it",
			EnvVar: "BOATLINK_MODEM_BAUD",
		},
		cli.StringFlag{
			Name:   "gps",
			Usage:  "GPS serial port",
			EnvVar: "BOATLINK_GPS",
		},
		cli.UintFlag{
			Name:   "gps-baud",
			Usage:  "GPS baud rate; 0 finds it",
			EnvVar: "BOATLINK_GPS_BAUD",
		},
		cli.UintFlag{
			Name:   "address",
			Value:  address,
			Usage:  "this node's radio address",
			EnvVar: "BOATLINK_ADDRESS",
		},
		cli.UintFlag{
			Name:   "peer",
			Value:  peer,
			Usage:  "the other node's radio address",
			EnvVar: "BOATLINK_PEER",
		},
		cli.UintFlag{
			Name:   "network",
			Value:  18,
			Usage:  "LoRa network id",
			EnvVar: "BOATLINK_NETWORK",
		},
		cli.UintFlag{
			Name:   "band",
			Value:  915000000,
			Usage:  "carrier frequency in Hz",
			EnvVar: "BOATLINK_BAND",
		},
		cli.StringFlag{
			Name:   "parameters",
			Value:  "9,7,1,12",
			Usage:  "spreading factor, bandwidth, coding rate, preamble",
			EnvVar: "BOATLINK_PARAMETERS",
		},
		cli.BoolFlag{
			Name:   "e7",
			Usage:  "send coordinates as integer degrees*1e7",
			EnvVar: "BOATLINK_E7",
		},
	}
}

func boatFlags() []cli.Flag {
	return []cli.Flag{
		cli.DurationFlag{
			Name:   "gps-interval",
			Value:  5 * time.Second,
			Usage:  "minimum time between position reports",
			EnvVar: "BOATLINK_GPS_INTERVAL",
		},
		cli.DurationFlag{
			Name:   "failsafe",
			Usage:  "stop the motor after this long without control; 0 disables",
			EnvVar: "BOATLINK_FAILSAFE",
		},
	}
}

func controllerFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "phone",
			Usage:  "Bluetooth serial port to the phone",
			EnvVar: "BOATLINK_PHONE",
		},
		cli.UintFlag{
			Name:   "phone-baud",
			Value:  9600,
			Usage:  "phone link baud rate",
			EnvVar: "BOATLINK_PHONE_BAUD",
		},
	}
}

func simFlags() []cli.Flag {
	return []cli.Flag{
		cli.Float64Flag{
			Name:  "lat",
			Value: 48.1173,
			Usage: "simulated boat latitude",
		},
		cli.Float64Flag{
			Name:  "lon",
			Value: 11.516667,
			Usage: "simulated boat longitude",
		},
		cli.DurationFlag{
			Name:  "gps-interval",
			Value: 5 * time.Second,
			Usage: "minimum time between position reports",
		},
	}
}
