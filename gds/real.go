package gds

import "math"

// GDSII 8-byte reals are sign-magnitude with a base-16 excess-64
// exponent: value = mantissa/2^56 * 16^(exponent-64). IEEE doubles
// convert without loss for the unit scales this package writes.

func toReal8(f float64) uint64 {
	if f == 0 {
		return 0
	}
	var sign uint64
	if f < 0 {
		sign = 1 << 63
		f = -f
	}

	exp := 64
	for f >= 1 {
		f /= 16
		exp++
	}
	for f < 1.0/16 {
		f *= 16
		exp--
	}
	if exp < 0 {
		return sign // underflow to zero
	}
	if exp > 127 {
		exp = 127
		f = 1
	}
	mant := uint64(f * (1 << 56))
	if mant >= 1<<56 {
		mant = 1<<56 - 1
	}
	return sign | uint64(exp)<<56 | mant
}

func fromReal8(bits uint64) float64 {
	if bits == 0 {
		return 0
	}
	mant := float64(bits&(1<<56-1)) / (1 << 56)
	exp := int(bits>>56) & 0x7F
	f := mant * math.Pow(16, float64(exp-64))
	if bits&(1<<63) != 0 {
		f = -f
	}
	return f
}
