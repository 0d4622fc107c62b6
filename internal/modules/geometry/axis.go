package geometry

import "fmt"

// LabelMode selects how axis labels are formatted
type LabelMode string

const (
	// LabelCurrency renders "$12.3k" style values
	LabelCurrency LabelMode = "currency"
	// LabelPercent renders "12.3%" style values
	LabelPercent LabelMode = "percent"
	// LabelRatio renders bare two-decimal values for unitless metrics
	LabelRatio LabelMode = "ratio"
)

// AxisLabels returns steps descending values evenly spaced across [min, max]
// inclusive: the first element is max, the last is min. When min == max every
// label equals that value. steps <= 0 returns nil; steps == 1 returns [max].
func AxisLabels(min, max float64, steps int) []float64 {
	if steps <= 0 {
		return nil
	}
	if steps == 1 {
		return []float64{max}
	}

	labels := make([]float64, steps)
	span := max - min
	for i := 0; i < steps; i++ {
		labels[i] = max - float64(i)*span/float64(steps-1)
	}
	// Pin the endpoints so float drift never shifts them
	labels[0] = max
	labels[steps-1] = min

	return labels
}

// FormatAxisLabel renders a numeric label for display. Currency mode
// compresses values >= 1000 to thousands with one decimal ("$12.3k") and
// renders smaller values whole ("$950"); percent mode renders one decimal
// ("12.3%"). Formatting is presentational only and never feeds back into the
// underlying values.
func FormatAxisLabel(v float64, mode LabelMode) string {
	switch mode {
	case LabelPercent:
		return fmt.Sprintf("%.1f%%", v)
	case LabelRatio:
		return fmt.Sprintf("%.2f", v)
	}

	if v >= 1000 || v <= -1000 {
		return fmt.Sprintf("$%.1fk", v/1000)
	}
	return fmt.Sprintf("$%.0f", v)
}
