package router

import (
	"strings"
	"testing"
	"time"

	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/input"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/modem"
	"github.com/YeChamo/DroneBoatGang/nmea"
	"github.com/YeChamo/DroneBoatGang/uart"
)

type ctrlRig struct {
	clk   *clock.Manual
	radio *fakeRadio
	phone *uart.Mem
	state *levelPin
	ctrl  *Controller
}

type levelPin struct{ v bool }

func (p *levelPin) Get() bool { return p.v }

func newCtrlRig(cfg ControllerConfig) *ctrlRig {
	r := &ctrlRig{
		clk:   clock.NewManual(1000),
		radio: &fakeRadio{},
		phone: uart.NewMem(9600),
		state: &levelPin{v: true},
	}
	r.ctrl = NewController(cfg, r.radio, r.clk, nil)
	r.ctrl.AttachPhone(uart.NewChannel(r.phone, line.New()), r.state)
	r.radio.inbound = r.ctrl.HandleInbound
	return r
}

func (r *ctrlRig) phoneSaid() string {
	return strings.Join(r.phone.Lines(), "|")
}

func TestPhoneThrustReachesModem(t *testing.T) {
	clk := clock.NewManual(0)
	port := uart.NewMem(115200)
	port.Respond("AT+SEND=", "+OK\r\n")
	drv := modem.New(port, clk)

	ctrl := NewController(DefaultControllerConfig(), drv, clk, nil)
	if err := ctrl.HandlePhoneLine("THRUST,80"); err != nil {
		t.Fatal(err)
	}
	if got := port.Lines(); len(got) != 1 || got[0] != "AT+SEND=2,9,THRUST,80" {
		t.Fatalf("modem saw %q", got)
	}
}

func TestPhoneLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		sent string
	}{
		{"thrust", "THRUST,80", "THRUST,80"},
		{"rudder", "RUDDER,20", "RUDDER,20"},
		{"gps", "GPS,1.000000,2.000000", "GPS,1.000000,2.000000"},
		{"cmd", "CMD,LIGHTS", "CMD,LIGHTS"},
		{"wrapped", "FORWARD", "CMD,FORWARD"},
		{"trailing space", "STOP \r", "CMD,STOP"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newCtrlRig(DefaultControllerConfig())
			r.ctrl.HandlePhoneLine(tt.in)
			if got := r.radio.payloads(); got != tt.sent {
				t.Fatalf("sent %q want %q", got, tt.sent)
			}
		})
	}
}

func TestPingStatus(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	r.ctrl.HandlePhoneLine("PING")
	r.ctrl.HandlePhoneLine("STATUS")
	r.ctrl.HandleInbound("GPS,48.117300,11.516667")
	r.ctrl.HandlePhoneLine("STATUS")
	r.clk.Advance(10 * time.Second)
	r.ctrl.HandlePhoneLine("STATUS")

	want := "PONG|STATUS,NO_GPS|GPS,48.117300,11.516667|STATUS,GPS_STALE"
	if got := r.phoneSaid(); got != want {
		t.Fatalf("phone got %q want %q", got, want)
	}
	if len(r.radio.sent) != 0 {
		t.Fatalf("local replies went to the radio: %v", r.radio.sent)
	}
}

func TestStatusPrefersNewestFix(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	gps := uart.NewMem(9600)
	r.ctrl.AttachGPS(uart.NewChannel(gps, line.NewAnchored('$')), nmea.NewReceiver(r.clk, nil))

	r.ctrl.HandleInbound("GPS,1.000000,2.000000")
	r.clk.Advance(time.Second)
	gps.Inject(munich + "\r\n")
	r.ctrl.Step()
	r.phone.ClearWritten()
	r.ctrl.HandlePhoneLine("STATUS")
	if got := r.phoneSaid(); got != "GPS,48.117300,11.516667" {
		t.Fatalf("phone got %q", got)
	}
	if r.ctrl.RemoteFix().Lat != 1 {
		t.Fatalf("remote fix %+v", r.ctrl.RemoteFix())
	}
}

func TestInboundForwardedOnStep(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	r.radio.pending = []string{"ACK,FORWARD", "GPS,481173000,115166667"}
	r.ctrl.Step()
	got := r.phone.Lines()
	want := []string{"SYSTEM,CONNECTED", "ACK,FORWARD", "GPS,48.117300,11.516667"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("phone got %q want %q", got, want)
	}
	if fix := r.ctrl.RemoteFix(); !fix.Valid || fix.Lat != 48.1173 {
		t.Fatalf("remote fix %+v", fix)
	}
}

func TestLinkGatesPhone(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	r.state.v = false
	r.ctrl.Step()
	r.ctrl.HandlePhoneLine("PING")
	if got := r.phoneSaid(); got != "" {
		t.Fatalf("disconnected phone got %q", got)
	}

	r.ctrl.HandleInbound("GPS,1.000000,2.000000")
	r.state.v = true
	r.clk.Advance(400 * time.Millisecond)
	r.ctrl.Step()
	if got := r.phoneSaid(); got != "" {
		t.Fatalf("link polled early: %q", got)
	}
	r.clk.Advance(100 * time.Millisecond)
	r.ctrl.Step()
	if got := r.phoneSaid(); got != "SYSTEM,CONNECTED|GPS,1.000000,2.000000" {
		t.Fatalf("phone got %q", got)
	}
}

func TestIgnoreLinkState(t *testing.T) {
	cfg := DefaultControllerConfig()
	cfg.IgnoreLinkState = true
	r := newCtrlRig(cfg)
	r.state.v = false
	r.ctrl.Start()
	r.ctrl.HandlePhoneLine("PING")
	if got := r.phoneSaid(); got != "SYSTEM,READY|PONG" {
		t.Fatalf("phone got %q", got)
	}
}

func TestPhoneLinesReadOnStep(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	r.phone.Inject("PING\r\nTHRUST,40\r\nLEFT\n")
	r.ctrl.Step()
	if got := r.radio.payloads(); got != "THRUST,40|CMD,LEFT" {
		t.Fatalf("sent %q", got)
	}
	if got := r.phoneSaid(); got != "SYSTEM,CONNECTED|PONG" {
		t.Fatalf("phone got %q", got)
	}
}

type stick uint16

func (s *stick) Sample() uint16 { return uint16(*s) }

func TestJoystickPeriod(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	thr, rud := stick(0), stick(input.ADCCenter)
	r.ctrl.AttachJoystick(input.NewJoystick(&thr, &rud, r.clk))

	r.ctrl.Step()
	r.clk.Advance(199 * time.Millisecond)
	r.ctrl.Step()
	r.clk.Advance(time.Millisecond)
	thr = input.ADCCenter
	r.ctrl.Step()
	if got := r.radio.payloads(); got != "CTRL,100,50|CTRL,0,50" {
		t.Fatalf("sent %q", got)
	}
	if !r.ctrl.JoystickActive() {
		t.Fatal("joystick should still be active")
	}
}

func TestButtonSendsPosition(t *testing.T) {
	r := newCtrlRig(DefaultControllerConfig())
	btn := &levelPin{}
	r.ctrl.AttachButton(input.NewDebouncer(btn, r.clk))
	gps := uart.NewMem(9600)
	r.ctrl.AttachGPS(uart.NewChannel(gps, line.NewAnchored('$')), nmea.NewReceiver(r.clk, nil))

	btn.v = true
	r.ctrl.Step()
	if len(r.radio.sent) != 0 {
		t.Fatal("sent a position without a fix")
	}
	btn.v = false
	r.ctrl.Step()
	gps.Inject(munich + "\r\n")
	r.clk.Advance(50 * time.Millisecond)
	btn.v = true
	r.ctrl.Step()
	if got := r.radio.payloads(); got != "GPS,48.117300,11.516667" {
		t.Fatalf("sent %q", got)
	}
	if err := NewController(DefaultControllerConfig(), r.radio, r.clk, nil).SendPosition(); err != ErrNoFix {
		t.Fatalf("got %v want ErrNoFix", err)
	}
}
