package modem

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Parameters are the LoRa RF settings of AT+PARAMETER.
type Parameters struct {
	SpreadingFactor uint8 // 7..12
	Bandwidth       uint8 // 0..9, 7 = 125 kHz
	CodingRate      uint8 // 1..4, 4/5..4/8
	Preamble        uint8
}

// String returns the AT+PARAMETER argument, "9,7,1,12".
func (p Parameters) String() string {
	return strconv.Itoa(int(p.SpreadingFactor)) + "," + strconv.Itoa(int(p.Bandwidth)) + "," +
		strconv.Itoa(int(p.CodingRate)) + "," + strconv.Itoa(int(p.Preamble))
}

// ParseParameters reads the "sf,bw,cr,preamble" form String returns.
func ParseParameters(s string) (Parameters, error) {
	f := strings.Split(s, ",")
	if len(f) != 4 {
		return Parameters{}, errors.Errorf("modem: parameters %q: want sf,bw,cr,preamble", s)
	}
	var v [4]uint8
	for i, field := range f {
		n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 8)
		if err != nil {
			return Parameters{}, errors.Wrapf(err, "modem: parameters %q", s)
		}
		v[i] = uint8(n)
	}
	return Parameters{SpreadingFactor: v[0], Bandwidth: v[1], CodingRate: v[2], Preamble: v[3]}, nil
}

// Config is the radio setup applied by Init.
type Config struct {
	Address    uint16
	NetworkID  uint8
	Band       uint32 // Hz
	Parameters Parameters

	CommandTimeout time.Duration
	SendTimeout    time.Duration
}

// DefaultConfig returns the link settings both nodes ship with.
func DefaultConfig(address uint16) Config {
	return Config{
		Address:   address,
		NetworkID: 18,
		Band:      915000000,
		Parameters: Parameters{
			SpreadingFactor: 9,
			Bandwidth:       7,
			CodingRate:      1,
			Preamble:        12,
		},
		CommandTimeout: 1000 * time.Millisecond,
		SendTimeout:    3 * time.Second,
	}
}

// Validate checks the fields the modem would reject.
func (c Config) Validate() error {
	p := c.Parameters
	switch {
	case p.SpreadingFactor < 7 || p.SpreadingFactor > 12:
		return errors.Errorf("modem: spreading factor %d out of 7..12", p.SpreadingFactor)
	case p.Bandwidth > 9:
		return errors.Errorf("modem: bandwidth %d out of 0..9", p.Bandwidth)
	case p.CodingRate < 1 || p.CodingRate > 4:
		return errors.Errorf("modem: coding rate %d out of 1..4", p.CodingRate)
	case c.Band == 0:
		return errors.New("modem: band not set")
	}
	return nil
}

// Commands returns the AT lines Init sends, in order.
func (c Config) Commands() []string {
	return []string{
		"AT",
		"AT+ADDRESS=" + strconv.FormatUint(uint64(c.Address), 10),
		"AT+NETWORKID=" + strconv.FormatUint(uint64(c.NetworkID), 10),
		"AT+BAND=" + strconv.FormatUint(uint64(c.Band), 10),
		"AT+PARAMETER=" + c.Parameters.String(),
	}
}
