package router

import "time"

// BoatConfig tunes the boat profile.
type BoatConfig struct {
	// Peer is the radio address GPS reports and acknowledgements go to.
	Peer uint16
	// GPSInterval is the minimum time between GPS reports; 0 reports
	// every new fix.
	GPSInterval time.Duration
	// FailsafeTimeout neutralizes the actuators when no control payload
	// arrives for this long; 0 disables it.
	FailsafeTimeout time.Duration
	// DriveStep is how far FORWARD, BACKWARD, LEFT and RIGHT move an axis.
	DriveStep int
	// GPSE7 sends coordinates as integer degrees*1e7.
	GPSE7 bool
	// Mode is the mode at boot.
	Mode Mode
	// OutboxSize bounds the replies waiting for the radio.
	OutboxSize int
}

// DefaultBoatConfig reports to the controller at address 1 every 5 s and
// boots into LED-command mode.
func DefaultBoatConfig() BoatConfig {
	return BoatConfig{
		Peer:        1,
		GPSInterval: 5 * time.Second,
		DriveStep:   10,
		Mode:        ModeLEDCommand,
		OutboxSize:  8,
	}
}

// ControllerConfig tunes the controller profile.
type ControllerConfig struct {
	// Peer is the boat's radio address.
	Peer uint16
	// JoystickInterval is the CTRL send period.
	JoystickInterval time.Duration
	// FreshFix is the age below which a fix is reported to the phone.
	FreshFix time.Duration
	// IgnoreLinkState treats the phone as always connected.
	IgnoreLinkState bool
	// GPSE7 sends button-triggered positions as integer degrees*1e7.
	GPSE7 bool
}

// DefaultControllerConfig talks to the boat at address 2.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Peer:             2,
		JoystickInterval: 200 * time.Millisecond,
		FreshFix:         10 * time.Second,
	}
}
