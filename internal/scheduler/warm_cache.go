package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/clients/account"
	"github.com/prismdash/prism/internal/clients/analytics"
	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/scheduler/base"
)

// warmMetrics are the metric series worth fetching ahead of time.
var warmMetrics = []domain.Metric{
	domain.MetricSharpe,
	domain.MetricVolatility,
	domain.MetricDrawdown,
}

// WarmCacheJob walks every account and pre-fetches the series the
// dashboard asks for first, so page loads hit a fresh cache instead of
// the upstream APIs.
type WarmCacheJob struct {
	base.JobBase
	analytics analytics.ClientInterface
	accounts  account.ClientInterface
	periods   []string
	log       zerolog.Logger
}

// NewWarmCacheJob creates a new cache warming job. Periods defaults to
// the dashboard's common views when empty.
func NewWarmCacheJob(
	analyticsClient analytics.ClientInterface,
	accountClient account.ClientInterface,
	periods []string,
	log zerolog.Logger,
) *WarmCacheJob {
	if len(periods) == 0 {
		periods = []string{"1M", "1Y", "ALL"}
	}
	return &WarmCacheJob{
		analytics: analyticsClient,
		accounts:  accountClient,
		periods:   periods,
		log:       log.With().Str("job", "warm_cache").Logger(),
	}
}

// Name returns the job name
func (j *WarmCacheJob) Name() string {
	return "warm_cache"
}

// Run fetches portfolio history, allocation history and metric series
// for every account and period. Individual fetch failures are logged
// and skipped; the job only fails when the account list itself is
// unavailable.
func (j *WarmCacheJob) Run() error {
	accounts, err := j.accounts.ListAccounts()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	warmed := 0
	failed := 0
	for _, acct := range accounts {
		for _, period := range j.periods {
			if _, err := j.analytics.GetPortfolioHistory(acct.ID, period); err != nil {
				j.log.Warn().Err(err).
					Str("account", acct.ID).
					Str("period", period).
					Msg("Failed to warm portfolio history")
				failed++
			} else {
				warmed++
			}

			if _, err := j.analytics.GetAllocationHistory(acct.ID, period); err != nil {
				j.log.Warn().Err(err).
					Str("account", acct.ID).
					Str("period", period).
					Msg("Failed to warm allocation history")
				failed++
			} else {
				warmed++
			}

			for _, metric := range warmMetrics {
				if _, err := j.analytics.GetMetricSeries(acct.ID, metric, period); err != nil {
					j.log.Warn().Err(err).
						Str("account", acct.ID).
						Str("metric", string(metric)).
						Str("period", period).
						Msg("Failed to warm metric series")
					failed++
				} else {
					warmed++
				}
			}
		}
	}

	j.log.Info().
		Int("accounts", len(accounts)).
		Int("warmed", warmed).
		Int("failed", failed).
		Msg("Cache warm completed")

	return nil
}
