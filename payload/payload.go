// Package payload encodes and parses the text messages exchanged over the
// radio link between the controller and the boat.
//
//	GPS,<lat>,<lon>      six-decimal degrees; fields without a '.' are degrees*1e7
//	CTRL,<thr>,<rud>     throttle and rudder percent
//	CMD,<text>           command wrapper
//	ACK,<text>           acknowledgement
//	MODE=0 | MODE=1      GPS-report or LED-command mode
//	THRUST,<n>           throttle only
//	RUDDER,<n>           rudder only
//	FORWARD | BACKWARD | LEFT | RIGHT | STOP
//	0..4                 LED command digit
package payload

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalid is returned for a payload that does not fit the grammar.
var ErrInvalid = errors.New("payload: invalid")

// Kind identifies a payload type.
type Kind int

const (
	Unknown Kind = iota
	GPS
	Ctrl
	Cmd
	Ack
	Mode
	Thrust
	Rudder
	Drive
	LED
)

var kindNames = [...]string{"UNKNOWN", "GPS", "CTRL", "CMD", "ACK", "MODE", "THRUST", "RUDDER", "DRIVE", "LED"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Direction is one of the discrete drive words.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Stop
)

var directionWords = [...]string{"FORWARD", "BACKWARD", "LEFT", "RIGHT", "STOP"}

func (d Direction) String() string {
	if int(d) < len(directionWords) {
		return directionWords[d]
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

// Message is a parsed payload. Only the fields of its Kind are set.
// Integer fields are returned as sent; callers clamp.
type Message struct {
	Kind      Kind
	Lat, Lon  float64
	Throttle  int
	Rudder    int
	Text      string
	Mode      int
	Direction Direction
	Digit     int
}

// Parse classifies and decodes p.
func Parse(p string) (Message, error) {
	switch {
	case strings.HasPrefix(p, "GPS,"):
		lat, lon, err := ParseGPS(p)
		return Message{Kind: GPS, Lat: lat, Lon: lon}, err
	case strings.HasPrefix(p, "CTRL,"):
		thr, rud, err := ParseCtrl(p)
		return Message{Kind: Ctrl, Throttle: thr, Rudder: rud}, err
	case strings.HasPrefix(p, "CMD,"):
		return Message{Kind: Cmd, Text: p[len("CMD,"):]}, nil
	case strings.HasPrefix(p, "ACK,"):
		return Message{Kind: Ack, Text: p[len("ACK,"):]}, nil
	case p == "MODE=0" || p == "MODE=1":
		return Message{Kind: Mode, Mode: int(p[5] - '0')}, nil
	case strings.HasPrefix(p, "THRUST,"):
		n, err := leadingInt(p[len("THRUST,"):])
		return Message{Kind: Thrust, Throttle: n}, err
	case strings.HasPrefix(p, "RUDDER,"):
		n, err := leadingInt(p[len("RUDDER,"):])
		return Message{Kind: Rudder, Rudder: n}, err
	case len(p) == 1 && p[0] >= '0' && p[0] <= '4':
		return Message{Kind: LED, Digit: int(p[0] - '0')}, nil
	}
	for i, w := range directionWords {
		if p == w {
			return Message{Kind: Drive, Direction: Direction(i)}, nil
		}
	}
	return Message{Kind: Unknown, Text: p}, errors.Wrapf(ErrInvalid, "%q", p)
}

// FormatGPS returns the canonical GPS payload.
func FormatGPS(lat, lon float64) string {
	b := make([]byte, 0, 32)
	b = append(b, "GPS,"...)
	b = strconv.AppendFloat(b, lat, 'f', 6, 64)
	b = append(b, ',')
	b = strconv.AppendFloat(b, lon, 'f', 6, 64)
	return string(b)
}

// FormatGPSE7 returns the integer degrees*1e7 form.
func FormatGPSE7(lat, lon float64) string {
	return "GPS," + strconv.FormatInt(int64(math.Round(lat*1e7)), 10) + "," +
		strconv.FormatInt(int64(math.Round(lon*1e7)), 10)
}

// ParseGPS decodes either GPS form. Extra trailing fields are ignored.
func ParseGPS(p string) (lat, lon float64, err error) {
	fields := strings.Split(strings.TrimPrefix(p, "GPS,"), ",")
	if len(fields) < 2 {
		return 0, 0, errors.Wrapf(ErrInvalid, "%q", p)
	}
	if lat, err = coordinate(fields[0]); err != nil {
		return 0, 0, err
	}
	if lon, err = coordinate(fields[1]); err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.Wrapf(ErrInvalid, "%q out of range", p)
	}
	return lat, lon, nil
}

// coordinate reads decimal degrees when the field has a decimal point and
// integer degrees*1e7 when it has none.
func coordinate(s string) (float64, error) {
	if !strings.Contains(s, ".") {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalid, "coordinate %q", s)
		}
		return float64(n) / 1e7, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "coordinate %q", s)
	}
	return v, nil
}

// FormatCtrl returns a CTRL payload.
func FormatCtrl(throttle, rudder int) string {
	return "CTRL," + strconv.Itoa(throttle) + "," + strconv.Itoa(rudder)
}

// ParseCtrl decodes a CTRL payload. Values are returned unclamped.
func ParseCtrl(p string) (throttle, rudder int, err error) {
	rest := strings.TrimPrefix(p, "CTRL,")
	i := strings.IndexByte(rest, ',')
	if i < 0 {
		return 0, 0, errors.Wrapf(ErrInvalid, "%q", p)
	}
	if throttle, err = leadingInt(rest[:i]); err != nil {
		return 0, 0, err
	}
	if rudder, err = leadingInt(rest[i+1:]); err != nil {
		return 0, 0, err
	}
	return throttle, rudder, nil
}

// leadingInt parses an optionally signed decimal prefix of s, stopping at
// the first non-digit so trailing fields do not fail the parse.
func leadingInt(s string) (int, error) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, errors.Wrapf(ErrInvalid, "number %q", s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, errors.Wrapf(ErrInvalid, "number %q", s)
	}
	return n, nil
}

// Wrap returns "CMD,<text>".
func Wrap(text string) string {
	return "CMD," + text
}

// FormatAck returns "ACK,<text>".
func FormatAck(text string) string {
	return "ACK," + text
}
