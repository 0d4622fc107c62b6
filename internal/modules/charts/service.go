// Package charts composes upstream series, pure transforms, and render
// geometry into complete chart payloads for the dashboard frontend.
package charts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/clients/analytics"
	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/geometry"
	"github.com/prismdash/prism/internal/modules/hover"
	"github.com/prismdash/prism/internal/modules/series"
	"github.com/prismdash/prism/internal/utils"
)

// defaultAxisSteps is the label count for every vertical axis.
const defaultAxisSteps = 5

// ErrInvalidPeriod marks period selectors outside the supported set.
// Handlers map it to a 400 response.
var ErrInvalidPeriod = errors.New("invalid period")

// Dimensions is the render viewport charts are laid out against.
type Dimensions struct {
	Width   float64
	Height  float64
	Padding float64
}

// Options tunes optional per-request chart features.
type Options struct {
	// SmoothPeriod enables an SMA overlay with the given window. 0 disables.
	SmoothPeriod int
}

// PortfolioChart is the complete payload for the portfolio value chart.
type PortfolioChart struct {
	Period       string                   `json:"period"`
	Points       []domain.TimeSeriesPoint `json:"points"`
	Geometry     domain.ChartGeometry     `json:"geometry"`
	YAxisDisplay []string                 `json:"y_axis_display"`
	LatestValue  float64                  `json:"latest_value"`
	ChangePct    float64                  `json:"change_pct"`
	Smoothed     []float64                `json:"smoothed,omitempty"`
}

// DrawdownChart is the payload for the decline-from-peak chart.
type DrawdownChart struct {
	Period       string                    `json:"period"`
	Points       []domain.DrawdownPoint    `json:"points"`
	Geometry     domain.ChartGeometry      `json:"geometry"`
	YAxisDisplay []string                  `json:"y_axis_display"`
	MaxDrawdown  float64                   `json:"max_drawdown"`
	Underwater   []domain.UnderwaterPeriod `json:"underwater_periods"`
}

// AllocationChart is the payload for the stacked allocation chart.
type AllocationChart struct {
	Period  string                   `json:"period"`
	Points  []domain.AllocationPoint `json:"points"`
	Stacked []domain.StackedPoint    `json:"stacked"`
	Latest  *domain.AllocationPoint  `json:"latest,omitempty"`
}

// MetricChart is the payload for a rolling-metric chart.
type MetricChart struct {
	Period         string               `json:"period"`
	Metric         domain.Metric        `json:"metric"`
	Points         []domain.MetricPoint `json:"points"`
	Geometry       domain.ChartGeometry `json:"geometry"`
	YAxisDisplay   []string             `json:"y_axis_display"`
	LatestValue    float64              `json:"latest_value"`
	Interpretation string               `json:"interpretation"`
}

// Service builds chart payloads from analytics-engine series.
type Service struct {
	analytics analytics.ClientInterface
	dims      Dimensions
	log       zerolog.Logger
}

// NewService creates a new charts service rendering into the given viewport.
func NewService(analyticsClient analytics.ClientInterface, dims Dimensions, log zerolog.Logger) *Service {
	return &Service{
		analytics: analyticsClient,
		dims:      dims,
		log:       log.With().Str("service", "charts").Logger(),
	}
}

// validPeriods are the ranges the dashboard period switcher offers.
var validPeriods = map[string]bool{
	"7D":  true,
	"1M":  true,
	"3M":  true,
	"6M":  true,
	"1Y":  true,
	"ALL": true,
}

// parsePeriod normalizes and validates a period selector. Empty defaults to 1M.
func parsePeriod(period string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(period))
	if p == "" {
		p = "1M"
	}
	if !validPeriods[p] {
		return "", fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	return p, nil
}

// downsampleForPeriod thins long ranges so paths stay light: a year of daily
// points renders weekly, the full history monthly. Short ranges pass through.
func downsampleForPeriod(points []domain.TimeSeriesPoint, period string) []domain.TimeSeriesPoint {
	switch period {
	case "1Y":
		return series.DownsampleToWeekly(points)
	case "ALL":
		return series.DownsampleToMonthly(points)
	}
	return points
}

// GetPortfolioChart returns the portfolio value series with geometry and a
// change summary for the requested period.
func (s *Service) GetPortfolioChart(accountID, period string, opts Options) (*PortfolioChart, error) {
	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimer("portfolio_chart", s.log)()

	raw, err := s.analytics.GetPortfolioHistory(accountID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio history: %w", err)
	}

	points := downsampleForPeriod(raw, p)
	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.Value
	}

	chart := &PortfolioChart{
		Period: p,
		Points: points,
	}
	chart.Geometry, chart.YAxisDisplay = s.buildGeometry(values, geometry.LabelCurrency)

	if len(values) > 0 {
		chart.LatestValue = values[len(values)-1]
		if first := values[0]; first != 0 {
			chart.ChangePct = (chart.LatestValue - first) / first * 100
		}
	}

	if opts.SmoothPeriod > 0 {
		chart.Smoothed = series.Smooth(values, opts.SmoothPeriod)
	}

	return chart, nil
}

// GetDrawdownChart returns the decline-from-peak series derived from the
// portfolio history, with its underwater spans.
func (s *Service) GetDrawdownChart(accountID, period string) (*DrawdownChart, error) {
	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimer("drawdown_chart", s.log)()

	history, err := s.analytics.GetPortfolioHistory(accountID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio history: %w", err)
	}

	points := series.Drawdown(downsampleForPeriod(history, p))
	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.Drawdown
	}

	chart := &DrawdownChart{
		Period:     p,
		Points:     points,
		Underwater: series.UnderwaterPeriods(points),
	}
	chart.Geometry, chart.YAxisDisplay = s.buildGeometry(values, geometry.LabelPercent)

	for _, v := range values {
		if v < chart.MaxDrawdown {
			chart.MaxDrawdown = v
		}
	}

	return chart, nil
}

// GetAllocationChart returns normalized per-date bucket shares and their
// stacked cumulative bounds.
func (s *Service) GetAllocationChart(accountID, period string) (*AllocationChart, error) {
	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimer("allocation_chart", s.log)()

	records, err := s.analytics.GetAllocationHistory(accountID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation history: %w", err)
	}

	points := series.Allocation(records)

	chart := &AllocationChart{
		Period:  p,
		Points:  points,
		Stacked: series.Stacked(points),
	}
	if len(points) > 0 {
		latest := points[len(points)-1]
		chart.Latest = &latest
	}

	return chart, nil
}

// GetMetricChart returns a rolling-metric series with geometry and the
// interpretation label for its latest sample.
func (s *Service) GetMetricChart(accountID string, metric domain.Metric, period string) (*MetricChart, error) {
	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimer("metric_chart", s.log)()

	points, err := s.analytics.GetMetricSeries(accountID, metric, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s series: %w", metric, err)
	}

	values := make([]float64, len(points))
	for i, pt := range points {
		values[i] = pt.Value
	}

	chart := &MetricChart{
		Period: p,
		Metric: metric,
		Points: points,
	}
	chart.Geometry, chart.YAxisDisplay = s.buildGeometry(values, axisModeFor(metric))

	if len(values) > 0 {
		chart.LatestValue = values[len(values)-1]
		chart.Interpretation = hover.InterpretMetric(metric, chart.LatestValue)
	}

	return chart, nil
}

// GetPortfolioPNG renders the portfolio chart for a period as a PNG image.
func (s *Service) GetPortfolioPNG(accountID, period string) ([]byte, error) {
	p, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimer("portfolio_png", s.log)()

	points, err := s.analytics.GetPortfolioHistory(accountID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio history: %w", err)
	}

	return RenderPortfolioPNG(points)
}

// buildGeometry derives paths and axis labels for one value series.
func (s *Service) buildGeometry(values []float64, mode geometry.LabelMode) (domain.ChartGeometry, []string) {
	geo := domain.ChartGeometry{
		LinePath: geometry.LinePath(values, s.dims.Width, s.dims.Height, s.dims.Padding),
		AreaPath: geometry.AreaPath(values, s.dims.Width, s.dims.Height, s.dims.Padding),
	}

	if len(values) > 0 {
		min, max := geometry.MinMax(values)
		geo.YAxisLabels = geometry.AxisLabels(min, max, defaultAxisSteps)
	}

	display := make([]string, len(geo.YAxisLabels))
	for i, v := range geo.YAxisLabels {
		display[i] = geometry.FormatAxisLabel(v, mode)
	}

	return geo, display
}

// axisModeFor picks the label format for a metric axis. Sharpe is a plain
// ratio; the other metrics are percentages.
func axisModeFor(metric domain.Metric) geometry.LabelMode {
	if metric == domain.MetricSharpe {
		return geometry.LabelRatio
	}
	return geometry.LabelPercent
}
