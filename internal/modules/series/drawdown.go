// Package series transforms raw portfolio history into the derived series
// the dashboard charts draw: drawdown curves, allocation compositions with
// their stacked bounds, smoothed overlays and downsampled ranges.
//
// Every function is pure. No I/O, no clock, empty input yields empty output.
package series

import (
	"github.com/prismdash/prism/internal/domain"
)

// Drawdown converts a value series into percent-below-peak points in a
// single forward pass. The running peak only ever rises, so the result is
// always <= 0 and exactly 0 wherever the series sets a new peak.
func Drawdown(points []domain.TimeSeriesPoint) []domain.DrawdownPoint {
	if len(points) == 0 {
		return nil
	}

	out := make([]domain.DrawdownPoint, 0, len(points))
	peak := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}

		// Non-positive peaks would divide by zero, report flat instead
		dd := 0.0
		if peak > 0 {
			dd = (p.Value - peak) / peak * 100
		}

		out = append(out, domain.DrawdownPoint{Date: p.Date, Drawdown: dd})
	}

	return out
}

// UnderwaterPeriods extracts the contiguous spans where the drawdown curve
// sits below zero. End carries the recovery date when the curve climbed
// back to its peak, or the final sample date for a span still open when
// the series ends.
func UnderwaterPeriods(points []domain.DrawdownPoint) []domain.UnderwaterPeriod {
	var periods []domain.UnderwaterPeriod
	var current *domain.UnderwaterPeriod

	for _, p := range points {
		if p.Drawdown < 0 {
			if current == nil {
				current = &domain.UnderwaterPeriod{Start: p.Date, TroughPct: p.Drawdown}
			}
			if p.Drawdown < current.TroughPct {
				current.TroughPct = p.Drawdown
			}
			current.End = p.Date
			continue
		}

		if current != nil {
			current.End = p.Date
			current.Recovered = true
			periods = append(periods, *current)
			current = nil
		}
	}

	if current != nil {
		periods = append(periods, *current)
	}

	return periods
}
