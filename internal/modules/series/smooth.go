package series

import (
	"github.com/markcheno/go-talib"
)

// Smooth overlays a simple moving average on a value series. The warm-up
// prefix, where the average is not yet defined, carries the raw values so
// the overlay never dives to zero at the left edge. Series shorter than
// the period come back unchanged.
func Smooth(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 || len(values) < period {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := talib.Sma(values, period)
	for i := 0; i < period-1; i++ {
		out[i] = values[i]
	}
	return out
}
