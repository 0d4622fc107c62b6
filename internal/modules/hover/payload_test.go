package hover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismdash/prism/internal/domain"
)

func TestInterpretSharpe(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{2.5, "Excellent"},
		{2.0, "Good"}, // thresholds are strict greater-than
		{1.5, "Good"},
		{1.0, "Fair"},
		{0.6, "Fair"},
		{0.5, "Poor"},
		{0.1, "Poor"},
		{0, "Very Poor"},
		{-0.8, "Very Poor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, InterpretSharpe(tt.value), "sharpe=%v", tt.value)
	}
}

func TestInterpretVolatility(t *testing.T) {
	assert.Equal(t, "Low", InterpretVolatility(5))
	assert.Equal(t, "Moderate", InterpretVolatility(10))
	assert.Equal(t, "Moderate", InterpretVolatility(19.9))
	assert.Equal(t, "High", InterpretVolatility(20))
	assert.Equal(t, "Very High", InterpretVolatility(30))
}

func TestInterpretDrawdown(t *testing.T) {
	assert.Equal(t, "Minor", InterpretDrawdown(0))
	assert.Equal(t, "Minor", InterpretDrawdown(-2))
	assert.Equal(t, "Moderate", InterpretDrawdown(-5))
	assert.Equal(t, "Moderate", InterpretDrawdown(-10))
	assert.Equal(t, "Severe", InterpretDrawdown(-15))
	assert.Equal(t, "Critical", InterpretDrawdown(-30))
	assert.Equal(t, "Critical", InterpretDrawdown(-60))
}

func TestPortfolioPayload(t *testing.T) {
	build := PortfolioPayload([]domain.TimeSeriesPoint{
		{Date: "2024-01-01", Value: 12345.6},
	})

	payload := build(0)
	require.NotNil(t, payload)
	assert.Equal(t, "2024-01-01", payload["date"])
	assert.Equal(t, 12345.6, payload["value"])
	assert.Equal(t, "$12.3k", payload["label"])

	assert.Nil(t, build(1), "Out-of-range index yields no payload")
	assert.Nil(t, build(-1))
}

func TestDrawdownPayload(t *testing.T) {
	build := DrawdownPayload([]domain.DrawdownPoint{
		{Date: "2024-01-02", Drawdown: -12.34},
	})

	payload := build(0)
	require.NotNil(t, payload)
	assert.Equal(t, -12.34, payload["drawdown"])
	assert.Equal(t, "-12.3%", payload["label"])
	assert.Equal(t, "Moderate", payload["severity"])
}

func TestAllocationPayload(t *testing.T) {
	build := AllocationPayload([]domain.AllocationPoint{
		{Date: "2024-01-01", BTC: 40, Stablecoin: 60},
	})

	payload := build(0)
	require.NotNil(t, payload)
	assert.Equal(t, 40.0, payload["btc"])
	assert.Equal(t, 0.0, payload["eth"])
	assert.Equal(t, 60.0, payload["stablecoin"])
	assert.Equal(t, 0.0, payload["defi"])
	assert.Equal(t, 0.0, payload["altcoin"])
}

func TestMetricPayload(t *testing.T) {
	build := MetricPayload(domain.MetricSharpe, []domain.MetricPoint{
		{Date: "2024-01-01", Value: 1.0},
	})

	payload := build(0)
	require.NotNil(t, payload)
	assert.Equal(t, "sharpe", payload["metric"])
	assert.Equal(t, "Fair", payload["interpretation"], "Exactly 1.0 is Fair under strict thresholds")

	volatility := MetricPayload(domain.MetricVolatility, []domain.MetricPoint{
		{Date: "2024-01-01", Value: 25},
	})(0)
	require.NotNil(t, volatility)
	assert.Equal(t, "High", volatility["interpretation"])
}
