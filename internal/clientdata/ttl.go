package clientdata

import "time"

// TTL constants for different data types.
const (
	// Chart series refresh often while the dashboard is open.
	TTLPortfolioHistory  = 15 * time.Minute // Valuation history behind the main chart
	TTLAllocationHistory = 15 * time.Minute // Allocation composition history

	// Metrics are computed upstream on a slower cadence.
	TTLMetricSeries = time.Hour // Sharpe, volatility, drawdown series

	// Account lists rarely change.
	TTLAccounts = 12 * time.Hour
)
