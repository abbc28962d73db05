package modem

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReceivePrefix starts every unsolicited receive notification.
const ReceivePrefix = "+RCV="

// successMarkers are the terminal responses the supported modem firmwares
// use for a completed command.
var successMarkers = []string{"OK", "+OK", "OK+SEND", "OK+SENT", "SEND OK", "SENT", "SENDED"}

// IsReceiveFrame reports whether l is a +RCV= notification.
func IsReceiveFrame(l string) bool {
	return strings.HasPrefix(l, ReceivePrefix)
}

// IsSuccess reports whether l completes a command successfully.
func IsSuccess(l string) bool {
	for _, m := range successMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// IsFailure reports whether l completes a command with an error
// ("ERROR", "+ERR=4", ...).
func IsFailure(l string) bool {
	return strings.Contains(l, "ERR")
}

// isEcho reports whether l is the modem echoing a command back.
func isEcho(l string) bool {
	return strings.HasPrefix(l, "AT")
}

// Frame is a decoded +RCV= notification.
type Frame struct {
	Address uint16
	Length  int
	Payload string
	// RSSI and SNR are only meaningful when Signal is set.
	RSSI   int
	SNR    int
	Signal bool
}

// ParseFrame decodes "+RCV=<addr>,<len>,<payload>[,<rssi>,<snr>]".
// The declared length is trusted to split payload from the signal fields
// only when the remainder is exactly two integers; otherwise everything
// after the length field is the payload.
func ParseFrame(l string) (Frame, error) {
	if !IsReceiveFrame(l) {
		return Frame{}, errors.Wrapf(ErrFrame, "%q", l)
	}
	rest := l[len(ReceivePrefix):]
	i := strings.IndexByte(rest, ',')
	if i < 0 {
		return Frame{}, errors.Wrapf(ErrFrame, "%q", l)
	}
	addr, err := strconv.ParseUint(rest[:i], 10, 16)
	if err != nil {
		return Frame{}, errors.Wrapf(ErrFrame, "address in %q", l)
	}
	rest = rest[i+1:]
	i = strings.IndexByte(rest, ',')
	if i < 0 {
		return Frame{}, errors.Wrapf(ErrFrame, "%q", l)
	}
	n, err := strconv.Atoi(rest[:i])
	if err != nil {
		return Frame{}, errors.Wrapf(ErrFrame, "length in %q", l)
	}
	data := rest[i+1:]
	f := Frame{Address: uint16(addr), Length: n, Payload: data}
	if n >= 0 && n <= len(data) {
		if rssi, snr, ok := signalFields(data[n:]); ok {
			f.Payload = data[:n]
			f.RSSI, f.SNR, f.Signal = rssi, snr, true
		}
	}
	return f, nil
}

// signalFields parses ",<int>,<int>".
func signalFields(s string) (rssi, snr int, ok bool) {
	if len(s) == 0 || s[0] != ',' {
		return 0, 0, false
	}
	parts := strings.Split(s[1:], ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	rssi, err1 := strconv.Atoi(parts[0])
	snr, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return rssi, snr, true
}
