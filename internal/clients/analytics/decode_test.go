package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismdash/prism/internal/domain"
)

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"number", `{"v": 123.45}`, 123.45},
		{"negative number", `{"v": -50}`, -50},
		{"numeric string", `{"v": "123.45"}`, 123.45},
		{"null", `{"v": null}`, 0},
		{"none string", `{"v": "None"}`, 0},
		{"empty string", `{"v": ""}`, 0},
		{"garbage string", `{"v": "not-a-number"}`, 0},
		{"boolean", `{"v": true}`, 0},
		{"object", `{"v": {"nested": 1}}`, 0},
		{"array", `{"v": [1, 2]}`, 0},
		{"infinity string", `{"v": "Inf"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				V flexFloat `json:"v"`
			}
			err := json.Unmarshal([]byte(tt.input), &out)
			require.NoError(t, err, "Coercion must never fail")
			assert.Equal(t, tt.expected, float64(out.V))
		})
	}
}

func TestDecodeValuationHistory(t *testing.T) {
	data := []byte(`[
		{"date": "2024-01-01", "total_value_usd": 50000.5, "change_percentage": 1.2},
		{"date": "2024-01-02", "total_value_usd": "51000", "benchmark_value": 50500},
		{"date": "2024-01-03", "total_value_usd": null}
	]`)

	points, err := decodeValuationHistory(data)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, domain.TimeSeriesPoint{Date: "2024-01-01", Value: 50000.5}, points[0])
	assert.Equal(t, 51000.0, points[1].Value, "String numerics decode like numbers")
	assert.Equal(t, 50500.0, points[1].Benchmark)
	assert.Equal(t, 0.0, points[2].Value, "Null coerces to 0 at the boundary")
}

func TestDecodeValuationHistoryInvalid(t *testing.T) {
	_, err := decodeValuationHistory([]byte(`{"not": "an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse valuation history")
}

func TestDecodeAllocationHistoryVariants(t *testing.T) {
	data := []byte(`[
		{"date": "2024-01-01", "category": "Bitcoin", "percentage_of_portfolio": 40, "category_value": 20000, "total_value": 50000},
		{"date": "2024-01-01", "protocol": "Aave", "percentage": 12.5},
		{"date": "2024-01-02", "category": "Ethereum", "category_value": 15000, "total_value": 60000},
		{"date": "2024-01-02", "category": "Solana", "category_value_usd": 6000, "total_value": 60000}
	]`)

	records, err := decodeAllocationHistory(data)
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Explicit percentage wins even when values are present
	assert.Equal(t, domain.AllocationRecord{Date: "2024-01-01", Category: "Bitcoin", Share: 40}, records[0])

	// protocol/percentage variant resolves to the same canonical form
	assert.Equal(t, domain.AllocationRecord{Date: "2024-01-01", Category: "Aave", Share: 12.5}, records[1])

	// Value-over-total fallback
	assert.Equal(t, "Ethereum", records[2].Category)
	assert.InDelta(t, 25.0, records[2].Share, 1e-9)
	assert.InDelta(t, 10.0, records[3].Share, 1e-9, "category_value_usd works like category_value")
}

func TestDecodeAllocationHistoryDegenerate(t *testing.T) {
	data := []byte(`[
		{"date": "2024-01-01", "category": "Bitcoin"},
		{"date": "2024-01-01", "category": "Ethereum", "category_value": 100, "total_value": 0}
	]`)

	records, err := decodeAllocationHistory(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0.0, records[0].Share, "No numeric fields means share 0")
	assert.Equal(t, 0.0, records[1].Share, "Zero total cannot produce a share")
}

func TestDecodeMetricSeries(t *testing.T) {
	data := []byte(`[
		{"date": "2024-01-01", "sharpe_value": 1.8, "volatility_value": 22.5},
		{"date": "2024-01-02", "sharpe_value": "2.1"},
		{"date": "2024-01-03"}
	]`)

	sharpe, err := decodeMetricSeries(domain.MetricSharpe, data)
	require.NoError(t, err)
	require.Len(t, sharpe, 3)
	assert.Equal(t, 1.8, sharpe[0].Value)
	assert.Equal(t, 2.1, sharpe[1].Value)
	assert.Equal(t, 0.0, sharpe[2].Value, "Missing field reads as 0 for the requested metric")

	// The same payload decoded for another metric picks that metric's field
	volatility, err := decodeMetricSeries(domain.MetricVolatility, data)
	require.NoError(t, err)
	assert.Equal(t, 22.5, volatility[0].Value)
	assert.Equal(t, 0.0, volatility[1].Value)
}
