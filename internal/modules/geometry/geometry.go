// Package geometry maps value series onto fixed-size chart viewports.
//
// Everything in this package is a pure function: identical inputs produce
// identical outputs, empty inputs produce empty outputs, and nothing here
// panics on degenerate ranges. Callers treat empty results as "nothing to
// draw", not as errors.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinMax returns the minimum and maximum of values. Empty input returns (0, 0).
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return floats.Min(values), floats.Max(values)
}

// SafeDiv divides num by den, returning 0 when the denominator is zero or NaN
func SafeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}

// PercentOf returns part as a percentage of whole, 0 when whole is zero or NaN
func PercentOf(part, whole float64) float64 {
	return SafeDiv(part, whole) * 100
}

// Clamp limits v to the inclusive range [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Coerce replaces NaN and infinities with 0.
// Malformed upstream numerics are flattened to zero at the boundary so the
// geometry and transformer layers never see them.
func Coerce(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
