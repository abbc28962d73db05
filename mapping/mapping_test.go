package mapping

import "testing"

func TestConstrain(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below", -5, 0},
		{"inside", 42, 42},
		{"above", 250, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Constrain(tt.in, 0, 100); got != tt.want {
				t.Fatalf("got %d want %d", got, tt.want)
			}
		})
	}
}

func TestRange(t *testing.T) {
	if got := Range[uint32](2048, 0, 4096, 0, 100); got != 50 {
		t.Fatalf("got %d want 50", got)
	}
	if got := Range(0.5, 0.0, 1.0, 1000.0, 2000.0); got != 1500.0 {
		t.Fatalf("got %v want 1500", got)
	}
}

func TestDeadband(t *testing.T) {
	if !Deadband(2100, 2048, 100) {
		t.Fatal("2100 should be inside the 100-wide band around 2048")
	}
	if Deadband(1948, 2048, 100) {
		t.Fatal("1948 is on the band edge and should be outside")
	}
}
