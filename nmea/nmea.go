// Package nmea decodes the position fix from NMEA 0183 RMC sentences.
package nmea

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrChecksum is returned for a sentence whose XOR checksum is missing or wrong.
	ErrChecksum = errors.New("nmea: bad checksum")
	// ErrMalformed is returned for a sentence with missing or unparsable fields.
	ErrMalformed = errors.New("nmea: malformed sentence")
	// ErrNotRMC is returned for any sentence other than GPRMC or GNRMC.
	ErrNotRMC = errors.New("nmea: not an RMC sentence")
	// ErrNoFix is returned when the receiver reports its position as void.
	ErrNoFix = errors.New("nmea: no fix")
)

// minRMCFields is the number of comma-separated fields up to and including
// the longitude hemisphere.
const minRMCFields = 7

// ValidChecksum reports whether line starts with '$' and carries a correct
// "*hh" checksum after its last '*'. The checksum is the XOR of every byte
// between '$' and '*'; the hex digits may be either case.
func ValidChecksum(line string) bool {
	if len(line) == 0 || line[0] != '$' {
		return false
	}
	star := strings.LastIndexByte(line, '*')
	if star < 0 || star+3 != len(line) {
		return false
	}
	hi, ok1 := hexDigit(line[star+1])
	lo, ok2 := hexDigit(line[star+2])
	if !ok1 || !ok2 {
		return false
	}
	return Checksum(line[1:star]) == hi<<4|lo
}

// Checksum returns the XOR of all bytes in body.
func Checksum(body string) byte {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return sum
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseRMC extracts the position from a GPRMC or GNRMC sentence.
// A void fix (status other than 'A') returns ErrNoFix.
func ParseRMC(line string) (lat, lon float64, err error) {
	if !ValidChecksum(line) {
		return 0, 0, ErrChecksum
	}
	body := line[1:strings.LastIndexByte(line, '*')]
	fields := strings.Split(body, ",")
	if fields[0] != "GPRMC" && fields[0] != "GNRMC" {
		return 0, 0, ErrNotRMC
	}
	if len(fields) < minRMCFields {
		return 0, 0, errors.Wrapf(ErrMalformed, "%d fields", len(fields))
	}
	if fields[2] != "A" {
		return 0, 0, ErrNoFix
	}
	lat, err = ParseDDMM(fields[3], fields[4])
	if err != nil {
		return 0, 0, err
	}
	lon, err = ParseDDMM(fields[5], fields[6])
	if err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.Wrap(ErrMalformed, "coordinate out of range")
	}
	return lat, lon, nil
}

// ParseDDMM converts an NMEA DDMM.mmmm (or DDDMM.mmmm) field to decimal
// degrees, negated for the S and W hemispheres.
func ParseDDMM(field, hemi string) (float64, error) {
	if field == "" {
		return 0, errors.Wrap(ErrMalformed, "empty coordinate")
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || v < 0 {
		return 0, errors.Wrapf(ErrMalformed, "coordinate %q", field)
	}
	deg := math.Floor(v / 100)
	deg += (v - deg*100) / 60
	switch hemi {
	case "N", "E":
	case "S", "W":
		deg = -deg
	default:
		return 0, errors.Wrapf(ErrMalformed, "hemisphere %q", hemi)
	}
	return deg, nil
}
