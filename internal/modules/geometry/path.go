package geometry

import (
	"fmt"
	"math"
	"strings"
)

// LinePath renders a value series as an SVG path string ("M x,y L x,y ...").
//
// The X coordinate for index i of n points is i / max(n-1, 1) * width, so a
// single-point series lands at x=0 instead of dividing by zero. Y linearly
// maps [min, max] onto [height-padding, padding] (inverted, viewport Y grows
// downward); a flat series gets its value range floored to 1 and renders as a
// flat line on the baseline rather than NaN.
//
// An empty series returns "".
func LinePath(values []float64, width, height, padding float64) string {
	if len(values) == 0 {
		return ""
	}

	min, max := MinMax(values)
	valueRange := max - min
	if valueRange == 0 {
		valueRange = 1
	}

	denom := math.Max(float64(len(values)-1), 1)
	plotHeight := height - 2*padding

	var b strings.Builder
	for i, v := range values {
		x := float64(i) / denom * width
		y := height - padding - (v-min)/valueRange*plotHeight

		if i == 0 {
			fmt.Fprintf(&b, "M %.2f,%.2f", x, y)
		} else {
			fmt.Fprintf(&b, " L %.2f,%.2f", x, y)
		}
	}

	return b.String()
}

// AreaPath renders a value series as a closed SVG polygon suitable for fill.
// It reuses the line path and appends two closing segments down to the
// baseline (height-padding) at the right edge and back at the left edge.
// An empty series returns "".
func AreaPath(values []float64, width, height, padding float64) string {
	line := LinePath(values, width, height, padding)
	if line == "" {
		return ""
	}

	baseline := height - padding
	return fmt.Sprintf("%s L %.2f,%.2f L %.2f,%.2f Z", line, width, baseline, 0.0, baseline)
}

// PointAt returns the viewport coordinates of index i in a value series,
// using the same mapping as LinePath. Out-of-range indexes clamp to the
// series bounds; an empty series returns (0, 0).
func PointAt(values []float64, i int, width, height, padding float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	if i < 0 {
		i = 0
	}
	if i > len(values)-1 {
		i = len(values) - 1
	}

	min, max := MinMax(values)
	valueRange := max - min
	if valueRange == 0 {
		valueRange = 1
	}

	denom := math.Max(float64(len(values)-1), 1)
	x := float64(i) / denom * width
	y := height - padding - (values[i]-min)/valueRange*(height-2*padding)

	return x, y
}
