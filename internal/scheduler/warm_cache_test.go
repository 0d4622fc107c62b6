package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismdash/prism/internal/domain"
	testingpkg "github.com/prismdash/prism/internal/testing"
)

func TestWarmCacheJob_Name(t *testing.T) {
	job := NewWarmCacheJob(testingpkg.NewMockAnalyticsClient(), testingpkg.NewMockAccountClient(), nil, zerolog.Nop())
	assert.Equal(t, "warm_cache", job.Name())
}

func TestWarmCacheJob_Run(t *testing.T) {
	analytics := testingpkg.NewMockAnalyticsClient()
	accounts := testingpkg.NewMockAccountClient(
		domain.Account{ID: "acct-1", Name: "Main", Currency: "USD"},
		domain.Account{ID: "acct-2", Name: "Savings", Currency: "USD"},
	)

	job := NewWarmCacheJob(analytics, accounts, []string{"1M", "1Y"}, zerolog.Nop())
	require.NoError(t, job.Run())

	// 2 accounts x 2 periods for each series kind
	history, allocation, metrics := analytics.CallCounts()
	assert.Equal(t, 4, history)
	assert.Equal(t, 4, allocation)
	assert.Equal(t, 4*len(warmMetrics), metrics)
}

func TestWarmCacheJob_RunContinuesOnFetchError(t *testing.T) {
	analytics := testingpkg.NewMockAnalyticsClient()
	analytics.SetError(errors.New("upstream down"))
	accounts := testingpkg.NewMockAccountClient(domain.Account{ID: "acct-1", Name: "Main", Currency: "USD"})

	job := NewWarmCacheJob(analytics, accounts, []string{"1M"}, zerolog.Nop())

	// Per-series failures are logged, not returned
	require.NoError(t, job.Run())
	history, allocation, metrics := analytics.CallCounts()
	assert.Equal(t, 1, history)
	assert.Equal(t, 1, allocation)
	assert.Equal(t, len(warmMetrics), metrics)
}

func TestWarmCacheJob_RunFailsWithoutAccountList(t *testing.T) {
	accounts := testingpkg.NewMockAccountClient()
	accounts.SetError(errors.New("connection refused"))
	job := NewWarmCacheJob(testingpkg.NewMockAnalyticsClient(), accounts, nil, zerolog.Nop())

	err := job.Run()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list accounts")
}

func TestWarmCacheJob_DefaultPeriods(t *testing.T) {
	analytics := testingpkg.NewMockAnalyticsClient()
	accounts := testingpkg.NewMockAccountClient(domain.Account{ID: "acct-1", Name: "Main", Currency: "USD"})

	job := NewWarmCacheJob(analytics, accounts, nil, zerolog.Nop())
	require.NoError(t, job.Run())

	// Default warms 1M, 1Y and ALL
	history, _, _ := analytics.CallCounts()
	assert.Equal(t, 3, history)
}
