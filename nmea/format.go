package nmea

import (
	"math"
	"strconv"
	"time"
)

// FormatRMC returns an active RMC sentence, without line ending, placing
// the receiver at lat, lon at time t. Minutes carry four decimals.
func FormatRMC(t time.Time, lat, lon float64) string {
	t = t.UTC()
	b := make([]byte, 0, 80)
	b = append(b, "GPRMC,"...)
	b = t.AppendFormat(b, "150405.00")
	b = append(b, ",A,"...)
	b = appendDDMM(b, lat, 2, 'N', 'S')
	b = append(b, ',')
	b = appendDDMM(b, lon, 3, 'E', 'W')
	b = append(b, ",0.0,0.0,"...)
	b = t.AppendFormat(b, "020106")
	b = append(b, ",,"...)

	const hex = "0123456789ABCDEF"
	sum := Checksum(string(b))
	return "$" + string(b) + "*" + string([]byte{hex[sum>>4], hex[sum&0x0F]})
}

func appendDDMM(b []byte, v float64, width int, pos, neg byte) []byte {
	hemi := pos
	if v < 0 {
		hemi = neg
		v = -v
	}
	deg := int(math.Floor(v))
	min := strconv.FormatFloat((v-float64(deg))*60, 'f', 4, 64)
	if min == "60.0000" {
		deg++
		min = "0.0000"
	}
	ds := strconv.Itoa(deg)
	for i := len(ds); i < width; i++ {
		b = append(b, '0')
	}
	b = append(b, ds...)
	if len(min) < len("00.0000") {
		b = append(b, '0')
	}
	b = append(b, min...)
	return append(b, ',', hemi)
}
