package util

import "testing"

func TestMinMax(t *testing.T) {
	if got := Min(3, 7); got != 3 {
		t.Errorf("Min(3, 7) = %d, want 3", got)
	}
	if got := Max(3, 7); got != 7 {
		t.Errorf("Max(3, 7) = %d, want 7", got)
	}
	if got := Min(uint64(5), uint64(5)); got != 5 {
		t.Errorf("Min(5, 5) = %d, want 5", got)
	}
}

func TestRoundupRounddown(t *testing.T) {
	specs := []struct {
		v, b       int
		roundup    int
		rounddown  int
	}{
		{0, 16, 0, 0},
		{1, 16, 16, 0},
		{16, 16, 16, 16},
		{17, 16, 32, 16},
		{4095, 4096, 4096, 0},
		{4096, 4096, 4096, 4096},
	}
	for specIndex, spec := range specs {
		if got := Roundup(spec.v, spec.b); got != spec.roundup {
			t.Errorf("[spec %d] Roundup(%d, %d) = %d, want %d", specIndex, spec.v, spec.b, got, spec.roundup)
		}
		if got := Rounddown(spec.v, spec.b); got != spec.rounddown {
			t.Errorf("[spec %d] Rounddown(%d, %d) = %d, want %d", specIndex, spec.v, spec.b, got, spec.rounddown)
		}
	}
}
