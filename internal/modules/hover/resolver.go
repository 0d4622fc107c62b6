package hover

import (
	"math"
)

// ResolveIndex maps a pointer X offset to the nearest series index by
// rounding pointerX / width * (n-1), clamped into [0, n-1]. Any finite
// pointerX resolves to a valid index; an empty series resolves to -1.
func ResolveIndex(pointerX, width float64, n int) int {
	if n <= 0 {
		return -1
	}
	if n == 1 || width <= 0 {
		return 0
	}

	idx := int(math.Round(pointerX / width * float64(n-1)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}
