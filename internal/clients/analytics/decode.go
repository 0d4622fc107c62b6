package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/prismdash/prism/internal/domain"
)

// flexFloat decodes upstream numeric fields that arrive as numbers,
// numeric strings, or null. Anything unparseable coerces to 0 so one
// malformed record never poisons a whole series.
type flexFloat float64

// UnmarshalJSON never fails; bad input becomes 0.
func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" || s == "None" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}

	*f = flexFloat(v)
	return nil
}

// rawValuationPoint mirrors one analytics-engine valuation history record.
type rawValuationPoint struct {
	Date             string    `json:"date"`
	TotalValueUSD    flexFloat `json:"total_value_usd"`
	ChangePercentage flexFloat `json:"change_percentage"`
	BenchmarkValue   flexFloat `json:"benchmark_value"`
}

func decodeValuationHistory(data []byte) ([]domain.TimeSeriesPoint, error) {
	var raw []rawValuationPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse valuation history: %w", err)
	}

	points := make([]domain.TimeSeriesPoint, 0, len(raw))
	for _, r := range raw {
		points = append(points, domain.TimeSeriesPoint{
			Date:      r.Date,
			Value:     float64(r.TotalValueUSD),
			Benchmark: float64(r.BenchmarkValue),
		})
	}
	return points, nil
}

// rawAllocationRecord carries both upstream allocation shapes: the
// category/percentage_of_portfolio form and the protocol/percentage
// form. Each record resolves into a canonical AllocationRecord once,
// right here, so downstream code never inspects shapes again.
type rawAllocationRecord struct {
	Date                  string     `json:"date"`
	Category              string     `json:"category"`
	Protocol              string     `json:"protocol"`
	PercentageOfPortfolio *flexFloat `json:"percentage_of_portfolio"`
	Percentage            *flexFloat `json:"percentage"`
	CategoryValue         *flexFloat `json:"category_value"`
	CategoryValueUSD      *flexFloat `json:"category_value_usd"`
	TotalValue            *flexFloat `json:"total_value"`
}

// resolve picks the populated variant of the record. Share falls back to
// category value over total value when no percentage field is present.
func (r rawAllocationRecord) resolve() domain.AllocationRecord {
	label := r.Category
	if label == "" {
		label = r.Protocol
	}

	var share float64
	switch {
	case r.PercentageOfPortfolio != nil:
		share = float64(*r.PercentageOfPortfolio)
	case r.Percentage != nil:
		share = float64(*r.Percentage)
	default:
		value := 0.0
		if r.CategoryValue != nil {
			value = float64(*r.CategoryValue)
		} else if r.CategoryValueUSD != nil {
			value = float64(*r.CategoryValueUSD)
		}
		if r.TotalValue != nil && float64(*r.TotalValue) > 0 {
			share = value / float64(*r.TotalValue) * 100
		}
	}

	return domain.AllocationRecord{Date: r.Date, Category: label, Share: share}
}

func decodeAllocationHistory(data []byte) ([]domain.AllocationRecord, error) {
	var raw []rawAllocationRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse allocation history: %w", err)
	}

	records := make([]domain.AllocationRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, r.resolve())
	}
	return records, nil
}

// rawMetricPoint declares every metric value field the analytics engine
// emits. valueFor picks by metric tag, never by inspecting which fields
// happen to be present.
type rawMetricPoint struct {
	Date            string     `json:"date"`
	SharpeValue     *flexFloat `json:"sharpe_value"`
	VolatilityValue *flexFloat `json:"volatility_value"`
	DrawdownValue   *flexFloat `json:"drawdown_value"`
	UnderwaterValue *flexFloat `json:"underwater_value"`
}

func (r rawMetricPoint) valueFor(metric domain.Metric) float64 {
	var f *flexFloat
	switch metric {
	case domain.MetricSharpe:
		f = r.SharpeValue
	case domain.MetricVolatility:
		f = r.VolatilityValue
	case domain.MetricDrawdown:
		f = r.DrawdownValue
	case domain.MetricUnderwater:
		f = r.UnderwaterValue
	}
	if f == nil {
		return 0
	}
	return float64(*f)
}

func decodeMetricSeries(metric domain.Metric, data []byte) ([]domain.MetricPoint, error) {
	var raw []rawMetricPoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s series: %w", metric, err)
	}

	points := make([]domain.MetricPoint, 0, len(raw))
	for _, r := range raw {
		points = append(points, domain.MetricPoint{Date: r.Date, Value: r.valueFor(metric)})
	}
	return points, nil
}
