package modem

import "testing"

func TestPredicates(t *testing.T) {
	tests := []struct {
		line             string
		recv, ok, failed bool
	}{
		{"OK", false, true, false},
		{"+OK", false, true, false},
		{"SENDED", false, true, false},
		{"SEND OK", false, true, false},
		{"ERROR", false, false, true},
		{"+ERR=4", false, false, true},
		{"+RCV=1,2,OK,-40,9", true, true, false},
		{"+READY", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := IsReceiveFrame(tt.line); got != tt.recv {
				t.Fatalf("IsReceiveFrame got %v want %v", got, tt.recv)
			}
			if got := IsSuccess(tt.line); got != tt.ok {
				t.Fatalf("IsSuccess got %v want %v", got, tt.ok)
			}
			if got := IsFailure(tt.line); got != tt.failed {
				t.Fatalf("IsFailure got %v want %v", got, tt.failed)
			}
		})
	}
}

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Frame
	}{
		{
			name: "with signal",
			line: "+RCV=1,10,CTRL,60,50,-40,11",
			want: Frame{Address: 1, Length: 10, Payload: "CTRL,60,50", RSSI: -40, SNR: 11, Signal: true},
		},
		{
			name: "without signal",
			line: "+RCV=2,4,PING",
			want: Frame{Address: 2, Length: 4, Payload: "PING"},
		},
		{
			name: "length disagrees",
			line: "+RCV=2,17,GPS,48.1173,11.5167",
			want: Frame{Address: 2, Length: 17, Payload: "GPS,48.1173,11.5167"},
		},
		{
			name: "payload with commas and signal",
			line: "+RCV=7,19,GPS,48.1173,11.5167,-99,-3",
			want: Frame{Address: 7, Length: 19, Payload: "GPS,48.1173,11.5167", RSSI: -99, SNR: -3, Signal: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame(tt.line)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFrameMalformed(t *testing.T) {
	for _, l := range []string{"+RCV=", "+RCV=1", "+RCV=x,1,A", "+RCV=1,y,A", "OK"} {
		if _, err := ParseFrame(l); err == nil {
			t.Fatalf("%q: expected error", l)
		}
	}
}

func TestParseParameters(t *testing.T) {
	p, err := ParseParameters("12, 7,1,4")
	if err != nil {
		t.Fatal(err)
	}
	if p != (Parameters{12, 7, 1, 4}) || p.String() != "12,7,1,4" {
		t.Fatalf("got %+v %q", p, p.String())
	}
	for _, bad := range []string{"", "9,7,1", "9,7,1,x", "9,7,1,300"} {
		if _, err := ParseParameters(bad); err == nil {
			t.Fatalf("ParseParameters(%q) accepted", bad)
		}
	}
}
