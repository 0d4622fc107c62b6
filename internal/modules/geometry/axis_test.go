package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAxisLabels(t *testing.T) {
	labels := AxisLabels(0, 100, 5)

	assert.Equal(t, []float64{100, 75, 50, 25, 0}, labels)
	assert.Equal(t, 100.0, labels[0], "First label must be the maximum")
	assert.Equal(t, 0.0, labels[len(labels)-1], "Last label must be the minimum")
}

func TestAxisLabelsDescending(t *testing.T) {
	labels := AxisLabels(13.7, 9120.4, 7)

	for i := 1; i < len(labels); i++ {
		assert.LessOrEqual(t, labels[i], labels[i-1], "Labels must descend from max to min")
	}
}

func TestAxisLabelsFlatRange(t *testing.T) {
	// min == max yields identical labels, not NaN
	labels := AxisLabels(50, 50, 3)

	assert.Equal(t, []float64{50, 50, 50}, labels)
}

func TestAxisLabelsSingleStep(t *testing.T) {
	assert.Equal(t, []float64{100}, AxisLabels(0, 100, 1))
	assert.Empty(t, AxisLabels(0, 100, 0))
	assert.Empty(t, AxisLabels(0, 100, -2))
}

func TestFormatAxisLabel(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		mode     LabelMode
		expected string
	}{
		{"currency thousands", 12345.6, LabelCurrency, "$12.3k"},
		{"currency at threshold", 1000, LabelCurrency, "$1.0k"},
		{"currency below threshold", 950, LabelCurrency, "$950"},
		{"currency zero", 0, LabelCurrency, "$0"},
		{"currency negative thousands", -2500, LabelCurrency, "$-2.5k"},
		{"percent", 12.34, LabelPercent, "12.3%"},
		{"percent negative", -5.67, LabelPercent, "-5.7%"},
		{"percent zero", 0, LabelPercent, "0.0%"},
		{"ratio", 1.256, LabelRatio, "1.26"},
		{"ratio negative", -0.5, LabelRatio, "-0.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAxisLabel(tt.value, tt.mode))
		})
	}
}
