package series

import (
	"fmt"
	"math"
	"time"

	"github.com/prismdash/prism/internal/domain"
)

// DownsampleToWeekly keeps the last point of each ISO week. The final
// point always survives so the chart ends on the freshest sample.
func DownsampleToWeekly(points []domain.TimeSeriesPoint) []domain.TimeSeriesPoint {
	return downsampleByPeriod(points, weekKey)
}

// DownsampleToMonthly keeps the last point of each calendar month.
func DownsampleToMonthly(points []domain.TimeSeriesPoint) []domain.TimeSeriesPoint {
	return downsampleByPeriod(points, monthKey)
}

func downsampleByPeriod(points []domain.TimeSeriesPoint, key func(string) string) []domain.TimeSeriesPoint {
	if len(points) == 0 {
		return nil
	}

	out := make([]domain.TimeSeriesPoint, 0)
	for i, p := range points {
		if i == len(points)-1 {
			out = append(out, p)
			continue
		}
		if key(p.Date) != key(points[i+1].Date) {
			out = append(out, p)
		}
	}

	return out
}

// weekKey formats a date as YYYY-W## (ISO week). Unparseable dates keep
// their raw string so they are never silently merged into a neighbor.
func weekKey(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// monthKey extracts YYYY-MM.
func monthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}

// DownsampleLTTB reduces a series to at most threshold points using
// largest-triangle-three-buckets: the first and last points are kept, the
// interior is split into even buckets and each bucket contributes the
// point forming the largest triangle with the previous pick and the next
// bucket's average. Deterministic, ties go to the earlier index.
func DownsampleLTTB(points []domain.TimeSeriesPoint, threshold int) []domain.TimeSeriesPoint {
	n := len(points)
	if threshold <= 0 || threshold >= n {
		out := make([]domain.TimeSeriesPoint, n)
		copy(out, points)
		return out
	}
	if threshold < 3 {
		return []domain.TimeSeriesPoint{points[0], points[n-1]}
	}

	sampled := make([]domain.TimeSeriesPoint, 0, threshold)
	sampled = append(sampled, points[0])

	// Bucket the interior, excluding the pinned endpoints
	every := float64(n-2) / float64(threshold-2)
	a := 0
	for i := 0; i < threshold-2; i++ {
		rangeStart := int(math.Floor(float64(i)*every)) + 1
		rangeEnd := int(math.Floor(float64(i+1)*every)) + 1
		if rangeEnd >= n {
			rangeEnd = n - 1
		}

		avgStart := rangeEnd
		avgEnd := int(math.Floor(float64(i+2)*every)) + 1
		if avgEnd > n {
			avgEnd = n
		}
		if avgEnd <= avgStart {
			avgEnd = avgStart + 1
			if avgEnd > n {
				avgEnd = n
			}
		}

		var avgX, avgY float64
		count := 0
		for j := avgStart; j < avgEnd && j < n; j++ {
			avgX += float64(j)
			avgY += points[j].Value
			count++
		}
		if count > 0 {
			avgX /= float64(count)
			avgY /= float64(count)
		} else {
			avgX = float64(n - 1)
			avgY = points[n-1].Value
		}

		ax := float64(a)
		ay := points[a].Value
		maxArea := -1.0
		maxIdx := rangeStart
		for j := rangeStart; j < rangeEnd; j++ {
			area := math.Abs((ax-avgX)*(points[j].Value-ay) - (ax-float64(j))*(avgY-ay))
			if area > maxArea {
				maxArea = area
				maxIdx = j
			}
		}

		sampled = append(sampled, points[maxIdx])
		a = maxIdx
	}

	sampled = append(sampled, points[n-1])
	return sampled
}
