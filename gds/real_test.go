package gds

import "testing"

func TestReal8RoundTrip(t *testing.T) {
	vals := []float64{0, 1, -1, 0.01, 1e-8, 1e-6, 90, 180, 270, -5.5, 1024, 0.000244140625}
	for _, v := range vals {
		if got := fromReal8(toReal8(v)); got != v {
			t.Errorf("round trip %g -> %g", v, got)
		}
	}
}

func TestReal8KnownEncoding(t *testing.T) {
	// 1.0 = 1/16 * 16^1: exponent 65, mantissa 2^52.
	if got := toReal8(1); got != 0x4110000000000000 {
		t.Errorf("toReal8(1) = %#016x", got)
	}
	if got := toReal8(0); got != 0 {
		t.Errorf("toReal8(0) = %#016x", got)
	}
	if got := toReal8(-1); got != 0xC110000000000000 {
		t.Errorf("toReal8(-1) = %#016x", got)
	}
}
