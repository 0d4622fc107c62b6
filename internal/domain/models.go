// Package domain provides core domain models and types.
package domain

import "fmt"

// Metric identifies a rolling risk metric series computed by the analytics engine.
// Metric values arrive precomputed; this service only shapes them for charts.
type Metric string

const (
	MetricSharpe     Metric = "sharpe"
	MetricVolatility Metric = "volatility"
	MetricDrawdown   Metric = "drawdown"
	MetricUnderwater Metric = "underwater"
)

// ParseMetric validates a metric name from a request path or query
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricSharpe, MetricVolatility, MetricDrawdown, MetricUnderwater:
		return Metric(s), nil
	default:
		return "", fmt.Errorf("unknown metric: %s", s)
	}
}

// TimeSeriesPoint is one daily portfolio valuation.
// Dates are ISO "2006-01-02" strings, unique and ascending within a series.
type TimeSeriesPoint struct {
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
	Benchmark float64 `json:"benchmark,omitempty"`
}

// AllocationRecord is the canonical per-category record produced by the
// collaborator boundary decode. Share is percent-of-portfolio; the decode layer
// has already resolved it from whichever upstream variant carried it.
type AllocationRecord struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Share    float64 `json:"share"`
}

// AllocationPoint holds the five canonical bucket shares for one date.
// After normalization the shares sum to 100 for any date with a nonzero total;
// zero-total dates carry their raw (all-zero) shares unmodified.
type AllocationPoint struct {
	Date       string  `json:"date"`
	BTC        float64 `json:"btc"`
	ETH        float64 `json:"eth"`
	Stablecoin float64 `json:"stablecoin"`
	DeFi       float64 `json:"defi"`
	Altcoin    float64 `json:"altcoin"`
}

// Total returns the sum of the five bucket shares
func (p AllocationPoint) Total() float64 {
	return p.BTC + p.ETH + p.Stablecoin + p.DeFi + p.Altcoin
}

// StackedPoint carries the cumulative upper bound of each allocation band
// for one date, bottom-most band first: each field is the top edge of its
// band, so Altcoin is the running total of all five buckets.
type StackedPoint struct {
	Date       string  `json:"date"`
	BTC        float64 `json:"btc"`
	ETH        float64 `json:"eth"`
	Stablecoin float64 `json:"stablecoin"`
	DeFi       float64 `json:"defi"`
	Altcoin    float64 `json:"altcoin"`
}

// DrawdownPoint is the percent decline from the running peak at one date.
// Drawdown is always <= 0, and exactly 0 whenever the value sets a new peak.
type DrawdownPoint struct {
	Date     string  `json:"date"`
	Drawdown float64 `json:"drawdown"`
}

// MetricPoint is one sample of a rolling metric series
type MetricPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// UnderwaterPeriod is a contiguous span where the portfolio sat below its
// prior peak. End is the last date still underwater; Recovered reports whether
// the series climbed back to zero drawdown after the span.
type UnderwaterPeriod struct {
	Start     string  `json:"start"`
	End       string  `json:"end"`
	TroughPct float64 `json:"trough_pct"`
	Recovered bool    `json:"recovered"`
}

// Account is a portfolio account from the account API
type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// ChartGeometry is the derived, transient render geometry for one chart.
// Recomputed whenever the source series, viewport, or padding change; owned by
// the request that asked for it and never persisted.
type ChartGeometry struct {
	LinePath    string    `json:"line_path"`
	AreaPath    string    `json:"area_path"`
	YAxisLabels []float64 `json:"y_axis_labels"`
}

// HoverState is the published tooltip state for one chart instance.
// A nil *HoverState means the pointer is not over the chart.
type HoverState struct {
	Index   int                    `json:"index"`
	X       float64                `json:"x"`
	Y       float64                `json:"y"`
	Payload map[string]interface{} `json:"payload"`
}
