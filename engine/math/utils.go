package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp blends a towards b as a*(1-t) + b*t. The endpoints are exact: t=0
// returns a and t=1 returns b for finite inputs.
func Lerp[T constraints.Float](a, b, t T) T {
	return a*(1-t) + b*t
}
