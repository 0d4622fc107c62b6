package series

import (
	"math"
	"sort"
	"strings"

	"github.com/prismdash/prism/internal/domain"
)

// Canonical allocation buckets, in band order from the bottom of the
// stacked chart up.
const (
	BucketBTC        = "BTC"
	BucketETH        = "ETH"
	BucketStablecoin = "Stablecoin"
	BucketDeFi       = "DeFi"
	BucketAltcoin    = "Altcoin"
)

// bucketRules maps category substrings to buckets. Order matters: the
// first rule that matches wins, so "Stable BTC Fund" lands in BTC.
var bucketRules = []struct {
	substr string
	bucket string
}{
	{"btc", BucketBTC},
	{"bitcoin", BucketBTC},
	{"eth", BucketETH},
	{"ethereum", BucketETH},
	{"stable", BucketStablecoin},
	{"defi", BucketDeFi},
}

// Bucket assigns a raw category label to one of the five canonical buckets
// via case-insensitive substring matching. Unmatched labels fall through
// to Altcoin.
func Bucket(category string) string {
	lower := strings.ToLower(category)
	for _, rule := range bucketRules {
		if strings.Contains(lower, rule.substr) {
			return rule.bucket
		}
	}
	return BucketAltcoin
}

// Allocation groups raw allocation records by date, sums shares into the
// five canonical buckets and re-normalizes each date so the buckets total
// 100. Records whose share is exactly 0 or NaN are dropped before
// grouping. Dates whose summed total is not positive keep their raw sums.
func Allocation(records []domain.AllocationRecord) []domain.AllocationPoint {
	if len(records) == 0 {
		return nil
	}

	byDate := make(map[string]*domain.AllocationPoint)
	for _, r := range records {
		if r.Share == 0 || math.IsNaN(r.Share) {
			continue
		}

		point, ok := byDate[r.Date]
		if !ok {
			point = &domain.AllocationPoint{Date: r.Date}
			byDate[r.Date] = point
		}

		switch Bucket(r.Category) {
		case BucketBTC:
			point.BTC += r.Share
		case BucketETH:
			point.ETH += r.Share
		case BucketStablecoin:
			point.Stablecoin += r.Share
		case BucketDeFi:
			point.DeFi += r.Share
		default:
			point.Altcoin += r.Share
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]domain.AllocationPoint, 0, len(dates))
	for _, date := range dates {
		point := byDate[date]
		if total := point.Total(); total > 0 {
			scale := 100 / total
			point.BTC *= scale
			point.ETH *= scale
			point.Stablecoin *= scale
			point.DeFi *= scale
			point.Altcoin *= scale
		}
		out = append(out, *point)
	}

	return out
}

// Stacked converts bucket shares into cumulative band bounds: each field
// becomes the top edge of its band, bottom band first, so a normalized
// date tops out at 100.
func Stacked(points []domain.AllocationPoint) []domain.StackedPoint {
	if len(points) == 0 {
		return nil
	}

	out := make([]domain.StackedPoint, 0, len(points))
	for _, p := range points {
		sp := domain.StackedPoint{Date: p.Date}
		sp.BTC = p.BTC
		sp.ETH = sp.BTC + p.ETH
		sp.Stablecoin = sp.ETH + p.Stablecoin
		sp.DeFi = sp.Stablecoin + p.DeFi
		sp.Altcoin = sp.DeFi + p.Altcoin
		out = append(out, sp)
	}

	return out
}
