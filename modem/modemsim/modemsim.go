// Package modemsim simulates RYLR896-style modems on in-memory ports, so
// both node profiles can be exercised end to end without radios.
package modemsim

import (
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/uart"
)

// Air connects simulated modems. A frame sent by one modem is delivered to
// every other modem on the same network id and band whose address matches
// (address 0 broadcasts).
type Air struct {
	mu     sync.Mutex
	modems []*Modem
}

// NewAir returns an empty air.
func NewAir() *Air {
	return &Air{}
}

// Modem is one simulated module.
type Modem struct {
	air  *Air
	port *uart.Mem

	mu        sync.Mutex
	address   uint16
	networkID uint64
	band      uint64
	params    string
	muted     bool
	sent      []string
}

// Attach puts a modem on the air behind port.
func (a *Air) Attach(port *uart.Mem) *Modem {
	m := &Modem{air: a, port: port, networkID: 18, band: 915000000}
	a.mu.Lock()
	a.modems = append(a.modems, m)
	a.mu.Unlock()
	port.OnLine(m.handle)
	return m
}

// Mute makes the modem stop answering, as if unpowered.
func (m *Modem) Mute(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

// Address returns the configured address.
func (m *Modem) Address() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// Parameters returns the last AT+PARAMETER value.
func (m *Modem) Parameters() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// Sent returns the payloads transmitted so far.
func (m *Modem) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

// Deliver injects a frame from addr as if it had been received over the air.
func (m *Modem) Deliver(from uint16, payload string) {
	m.port.Inject(ReceiveLine(from, payload))
}

// ReceiveLine formats the notification a modem emits for payload.
func ReceiveLine(from uint16, payload string) string {
	return "+RCV=" + strconv.FormatUint(uint64(from), 10) + "," + strconv.Itoa(len(payload)) + "," + payload + ",-40,11\r\n"
}

func (m *Modem) handle(l string) {
	m.mu.Lock()
	muted := m.muted
	m.mu.Unlock()
	if muted {
		return
	}
	reply := m.exec(l)
	if reply != "" {
		m.port.Inject(reply + "\r\n")
	}
}

func (m *Modem) exec(l string) string {
	if l == "AT" {
		return "+OK"
	}
	name, arg, found := strings.Cut(strings.TrimPrefix(l, "AT+"), "=")
	if !strings.HasPrefix(l, "AT+") || !found {
		return "+ERR=1"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch name {
	case "ADDRESS":
		n, err := strconv.ParseUint(arg, 10, 16)
		if err != nil {
			return "+ERR=2"
		}
		m.address = uint16(n)
	case "NETWORKID":
		n, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return "+ERR=2"
		}
		m.networkID = n
	case "BAND":
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return "+ERR=2"
		}
		m.band = n
	case "PARAMETER":
		if strings.Count(arg, ",") != 3 {
			return "+ERR=2"
		}
		m.params = arg
	case "SEND":
		to, payload, err := parseSend(arg)
		if err != nil {
			return "+ERR=5"
		}
		m.sent = append(m.sent, payload)
		from, net, band := m.address, m.networkID, m.band
		// deliver outside our lock; peers inject into their own ports
		m.mu.Unlock()
		m.air.transmit(m, from, to, net, band, payload)
		m.mu.Lock()
	default:
		return "+ERR=1"
	}
	return "+OK"
}

var errSend = errors.New("modemsim: bad AT+SEND")

func parseSend(arg string) (uint16, string, error) {
	parts := strings.SplitN(arg, ",", 3)
	if len(parts) != 3 {
		return 0, "", errSend
	}
	to, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, "", err
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", err
	}
	if n != len(parts[2]) {
		return 0, "", errSend
	}
	return uint16(to), parts[2], nil
}

func (a *Air) transmit(src *Modem, from, to uint16, net, band uint64, payload string) {
	a.mu.Lock()
	peers := append([]*Modem(nil), a.modems...)
	a.mu.Unlock()
	for _, p := range peers {
		if p == src {
			continue
		}
		p.mu.Lock()
		match := !p.muted && p.networkID == net && p.band == band && (to == 0 || p.address == to)
		p.mu.Unlock()
		if match {
			p.Deliver(from, payload)
		}
	}
}
