package nmea

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/YeChamo/DroneBoatGang/baud"
	"github.com/YeChamo/DroneBoatGang/clock"
	"github.com/YeChamo/DroneBoatGang/line"
	"github.com/YeChamo/DroneBoatGang/uart"
)

const munich = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"

func sentence(body string) string {
	return fmt.Sprintf("$%s*%02X", body, Checksum(body))
}

func TestValidChecksum(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"reference sentence", munich, true},
		{"lowercase hex", munich[:len(munich)-1] + "a", true},
		{"flipped checksum", munich[:len(munich)-1] + "B", false},
		{"no dollar", munich[1:], false},
		{"no star", "$GPRMC,123519,A", false},
		{"short checksum", "$GPRMC*6", false},
		{"non hex", "$GPRMC*G1", false},
		{"bytes after checksum", munich + "XYZ", false},
		{"third hex digit", munich + "0", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidChecksum(tt.line); got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestChecksumBitFlips(t *testing.T) {
	s := sentence("GNRMC,081836,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E")
	if !ValidChecksum(s) {
		t.Fatalf("%q should validate", s)
	}
	star := len(s) - 3
	for i := 1; i < star; i++ {
		for bit := 0; bit < 8; bit++ {
			b := []byte(s)
			b[i] ^= 1 << bit
			if ValidChecksum(string(b)) {
				t.Fatalf("flip byte %d bit %d still validates: %q", i, bit, b)
			}
		}
	}
}

func TestParseRMC(t *testing.T) {
	lat, lon, err := ParseRMC(munich)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(lat-48.1173) > 1e-4 || math.Abs(lon-11.516667) > 1e-4 {
		t.Fatalf("got %f,%f want 48.1173,11.5167", lat, lon)
	}

	lat, lon, err = ParseRMC(sentence("GNRMC,081836,A,3751.65,S,14507.36,W,000.0,360.0,130998,011.3,E"))
	if err != nil {
		t.Fatal(err)
	}
	if lat > -37.86 || lat < -37.87 || lon > -145.12 || lon < -145.13 {
		t.Fatalf("got %f,%f want about -37.8608,-145.1227", lat, lon)
	}
}

func TestParseRMCErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"bad checksum", munich[:len(munich)-1] + "B", ErrChecksum},
		{"other sentence", sentence("GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"), ErrNotRMC},
		{"void", sentence("GPRMC,123519,V,,,,,,,230394,,"), ErrNoFix},
		{"too few fields", sentence("GPRMC,123519,A,4807.038"), ErrMalformed},
		{"empty latitude", sentence("GPRMC,123519,A,,N,01131.000,E,,,230394,,"), ErrMalformed},
		{"bad hemisphere", sentence("GPRMC,123519,A,4807.038,X,01131.000,E,,,230394,,"), ErrMalformed},
		{"latitude out of range", sentence("GPRMC,123519,A,9107.038,N,01131.000,E,,,230394,,"), ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRMC(tt.line)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v want %v", err, tt.want)
			}
		})
	}
}

func TestParseDDMMRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		deg := r.Intn(90)
		min := r.Float64() * 60
		field := fmt.Sprintf("%02d%07.4f", deg, min)
		want := float64(deg) + math.Floor(min*10000+0.5)/10000/60
		for _, hemi := range []string{"N", "S", "E", "W"} {
			got, err := ParseDDMM(field, hemi)
			if err != nil {
				t.Fatalf("%s %s: %v", field, hemi, err)
			}
			w := want
			if hemi == "S" || hemi == "W" {
				w = -w
			}
			if math.Abs(got-w) > 1e-5 {
				t.Fatalf("%s %s: got %f want %f", field, hemi, got, w)
			}
		}
	}
}

func TestReceiverKeepsFixOnBadSentence(t *testing.T) {
	clk := clock.NewManual(1000)
	r := NewReceiver(clk, nil)
	if err := r.HandleLine(munich); err != nil {
		t.Fatal(err)
	}
	first := r.Fix()
	if !first.Valid || first.UpdatedAt != 1000 {
		t.Fatalf("got %+v", first)
	}

	clk.Advance(time.Second)
	if err := r.HandleLine(munich[:len(munich)-1] + "B"); !errors.Is(err, ErrChecksum) {
		t.Fatalf("got %v want ErrChecksum", err)
	}
	if r.Fix() != first {
		t.Fatalf("fix changed to %+v", r.Fix())
	}

	r.HandleLine(sentence("GPRMC,123520,V,,,,,,,230394,,"))
	if r.Fix().Valid {
		t.Fatal("void RMC should invalidate the fix")
	}
	if acc, rej := r.Stats(); acc != 2 || rej != 1 {
		t.Fatalf("stats %d/%d want 2/1", acc, rej)
	}
}

func TestReceiverPollFromChannel(t *testing.T) {
	clk := clock.NewManual(0)
	m := uart.NewMem(9600)
	ch := uart.NewChannel(m, line.NewAnchored('$'))
	r := NewReceiver(clk, nil)

	m.Inject("1.000,E*6A\r\n" + munich + "\r\n")
	if !r.Poll(ch) {
		t.Fatal("expected a line")
	}
	if f := r.Fix(); !f.Valid || math.Abs(f.Lat-48.1173) > 1e-4 {
		t.Fatalf("got %+v", f)
	}
}

func TestFixFreshAndNewer(t *testing.T) {
	a := Fix{Valid: true, Lat: 1, UpdatedAt: 1000}
	b := Fix{Valid: true, Lat: 2, UpdatedAt: 5000}
	if !b.Fresh(14999, 10*time.Second) || b.Fresh(15000, 10*time.Second) {
		t.Fatal("freshness boundary wrong")
	}
	if got := Newer(6000, a, b); got.Lat != 2 {
		t.Fatalf("got %+v want the later fix", got)
	}
	if got := Newer(6000, a, Fix{}); got.Lat != 1 {
		t.Fatalf("got %+v want the only valid fix", got)
	}
}

// talker emits a sentence every 200 ms while the port is at its rate.
type talker struct {
	*uart.Mem
	clk  *clock.Manual
	rate uint32
	last uint32
}

func (t *talker) Buffered() int {
	if t.Mem.Rate() == t.rate && clock.Since(t.clk.Millis(), t.last) >= 200 {
		t.last = t.clk.Millis()
		t.Mem.Inject(munich + "\r\n")
	}
	return t.Mem.Buffered()
}

func TestAutobaudListensForSentences(t *testing.T) {
	clk := clock.NewManual(0)
	port := &talker{Mem: uart.NewMem(9600), clk: clk, rate: 38400}
	ch := uart.NewChannel(port, line.NewAnchored('$'))
	rate, err := Autobaud(ch, clk)
	if err != nil {
		t.Fatal(err)
	}
	if rate != 38400 {
		t.Fatalf("got %d want 38400", rate)
	}
	if got := port.Rates(); len(got) != 3 || got[0] != 9600 || got[1] != 4800 {
		t.Fatalf("tried %v", got)
	}
}

func TestAutobaudSilentDevice(t *testing.T) {
	clk := clock.NewManual(0)
	m := uart.NewMem(9600)
	ch := uart.NewChannel(m, line.NewAnchored('$'))
	rate, err := Autobaud(ch, clk)
	if !errors.Is(err, baud.ErrNoResponse) {
		t.Fatalf("got %v want no response", err)
	}
	if rate != 115200 || m.Rate() != 115200 {
		t.Fatalf("left at %d want the last candidate", rate)
	}
	if clk.Millis() > 3600 {
		t.Fatalf("took %d ms, budget is 3 s plus one probe", clk.Millis())
	}
}
