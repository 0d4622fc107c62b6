package hover

import (
	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/geometry"
)

// InterpretSharpe labels a Sharpe ratio. Thresholds are strict
// greater-than, so exactly 1.0 reads "Fair", not "Good".
func InterpretSharpe(v float64) string {
	switch {
	case v > 2.0:
		return "Excellent"
	case v > 1.0:
		return "Good"
	case v > 0.5:
		return "Fair"
	case v > 0:
		return "Poor"
	default:
		return "Very Poor"
	}
}

// InterpretVolatility labels an annualized volatility percentage.
func InterpretVolatility(v float64) string {
	switch {
	case v < 10:
		return "Low"
	case v < 20:
		return "Moderate"
	case v < 30:
		return "High"
	default:
		return "Very High"
	}
}

// InterpretDrawdown labels a drawdown percentage (a non-positive value).
func InterpretDrawdown(pct float64) string {
	switch {
	case pct > -5:
		return "Minor"
	case pct > -15:
		return "Moderate"
	case pct > -30:
		return "Severe"
	default:
		return "Critical"
	}
}

// PortfolioPayload builds tooltip payloads for a portfolio value series.
func PortfolioPayload(points []domain.TimeSeriesPoint) PayloadFunc {
	return func(i int) map[string]interface{} {
		if i < 0 || i >= len(points) {
			return nil
		}
		p := points[i]
		return map[string]interface{}{
			"date":  p.Date,
			"value": p.Value,
			"label": geometry.FormatAxisLabel(p.Value, geometry.LabelCurrency),
		}
	}
}

// DrawdownPayload builds tooltip payloads for a drawdown series.
func DrawdownPayload(points []domain.DrawdownPoint) PayloadFunc {
	return func(i int) map[string]interface{} {
		if i < 0 || i >= len(points) {
			return nil
		}
		p := points[i]
		return map[string]interface{}{
			"date":     p.Date,
			"drawdown": p.Drawdown,
			"label":    geometry.FormatAxisLabel(p.Drawdown, geometry.LabelPercent),
			"severity": InterpretDrawdown(p.Drawdown),
		}
	}
}

// AllocationPayload builds tooltip payloads for an allocation series,
// one share per canonical bucket.
func AllocationPayload(points []domain.AllocationPoint) PayloadFunc {
	return func(i int) map[string]interface{} {
		if i < 0 || i >= len(points) {
			return nil
		}
		p := points[i]
		return map[string]interface{}{
			"date":       p.Date,
			"btc":        p.BTC,
			"eth":        p.ETH,
			"stablecoin": p.Stablecoin,
			"defi":       p.DeFi,
			"altcoin":    p.Altcoin,
		}
	}
}

// MetricPayload builds tooltip payloads for a metric series, attaching
// the metric-specific interpretation label.
func MetricPayload(metric domain.Metric, points []domain.MetricPoint) PayloadFunc {
	return func(i int) map[string]interface{} {
		if i < 0 || i >= len(points) {
			return nil
		}
		p := points[i]
		return map[string]interface{}{
			"date":           p.Date,
			"metric":         string(metric),
			"value":          p.Value,
			"interpretation": InterpretMetric(metric, p.Value),
		}
	}
}

// InterpretMetric dispatches to the label ladder for the given metric.
// Underwater series are drawdowns, so they share the drawdown ladder.
func InterpretMetric(metric domain.Metric, v float64) string {
	switch metric {
	case domain.MetricSharpe:
		return InterpretSharpe(v)
	case domain.MetricVolatility:
		return InterpretVolatility(v)
	case domain.MetricDrawdown, domain.MetricUnderwater:
		return InterpretDrawdown(v)
	}
	return ""
}
