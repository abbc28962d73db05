package actuator

import "testing"

func TestPulseWidthClamps(t *testing.T) {
	for pct := -1000; pct <= 1000; pct++ {
		p := PulseWidth(pct)
		if p < MinPulseUS || p > MaxPulseUS {
			t.Fatalf("PulseWidth(%d) = %d out of range", pct, p)
		}
	}
	tests := []struct {
		pct  int
		want uint32
	}{
		{0, 1000},
		{50, 1500},
		{100, 2000},
		{37, 1370},
		{-5, 1000},
		{250, 2000},
	}
	for _, tt := range tests {
		if got := PulseWidth(tt.pct); got != tt.want {
			t.Fatalf("PulseWidth(%d) = %d want %d", tt.pct, got, tt.want)
		}
	}
}

type fakePWM struct {
	top uint32
	set map[uint8]uint32
}

func (f *fakePWM) Top() uint32 { return f.top }
func (f *fakePWM) Set(ch uint8, v uint32) {
	if f.set == nil {
		f.set = map[uint8]uint32{}
	}
	f.set[ch] = v
}

func TestChannelDuty(t *testing.T) {
	p := &fakePWM{top: 40000}
	out := NewOutput(NewChannel(p, 2), 50)
	if got := p.set[2]; got != 3000 {
		t.Fatalf("center duty %d want 3000 (1500 of 20000 us)", got)
	}
	out.SetPercent(100)
	if got := p.set[2]; got != 4000 {
		t.Fatalf("full duty %d want 4000", got)
	}
}

func TestOutputRecordsTransitions(t *testing.T) {
	var r Recorder
	o := NewOutput(&r, 0)
	o.SetPercent(0)
	o.SetPercent(100)
	if len(r.Pulses) != 2 || r.Pulses[0] != 1000 || r.Pulses[1] != 2000 {
		t.Fatalf("got %v want [1000 2000]", r.Pulses)
	}
	if o.Percent() != 100 || o.Pulse() != 2000 {
		t.Fatalf("state %d/%d", o.Percent(), o.Pulse())
	}
}
