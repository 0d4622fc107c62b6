package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/geometry"
	"github.com/prismdash/prism/internal/modules/series"
)

// maxPNGPoints caps how many samples feed the raster renderer; longer
// series are LTTB-downsampled first.
const maxPNGPoints = 500

// RenderPortfolioPNG renders the portfolio value series as a PNG line chart.
// A dashed benchmark series is added when the points carry benchmark values.
// Returns raw PNG bytes.
func RenderPortfolioPNG(points []domain.TimeSeriesPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	points = series.DownsampleLTTB(points, maxPNGPoints)

	xValues := make([]time.Time, 0, len(points))
	valueY := make([]float64, 0, len(points))
	benchY := make([]float64, 0, len(points))
	hasBenchmark := false

	for _, p := range points {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, t)
		valueY = append(valueY, p.Value)
		benchY = append(benchY, p.Benchmark)
		if p.Benchmark != 0 {
			hasBenchmark = true
		}
	}

	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 dated points, got %d", len(xValues))
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	seriesList := []chart.Series{valueSeries}
	if hasBenchmark {
		seriesList = append(seriesList, chart.TimeSeries{
			Name: "Benchmark",
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues,
			YValues: benchY,
		})
	}

	graph := chart.Chart{
		Title:  "Portfolio Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return geometry.FormatAxisLabel(f, geometry.LabelCurrency)
				}
				return ""
			},
		},
		Series: seriesList,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
