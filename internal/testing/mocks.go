package testing

import (
	"sync"

	"github.com/prismdash/prism/internal/domain"
)

// MockAccountClient is a mock implementation of the account client interface.
// Safe for concurrent use so jobs that fan out over accounts can share one.
type MockAccountClient struct {
	mu       sync.RWMutex
	accounts []domain.Account
	err      error
	calls    int
}

// NewMockAccountClient creates a new mock account client
func NewMockAccountClient(accounts ...domain.Account) *MockAccountClient {
	return &MockAccountClient{accounts: accounts}
}

// SetAccounts sets the accounts to return
func (m *MockAccountClient) SetAccounts(accounts []domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = accounts
}

// SetError sets the error to return
func (m *MockAccountClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListAccounts returns the configured accounts or error
func (m *MockAccountClient) ListAccounts() ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.accounts, nil
}

// Calls reports how many times ListAccounts was invoked
func (m *MockAccountClient) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// MockAnalyticsClient is a mock implementation of the analytics client
// interface returning fixed series for every account and period.
type MockAnalyticsClient struct {
	mu         sync.RWMutex
	history    []domain.TimeSeriesPoint
	allocation []domain.AllocationRecord
	metrics    []domain.MetricPoint
	err        error

	historyCalls    int
	allocationCalls int
	metricCalls     int
}

// NewMockAnalyticsClient creates a new mock analytics client
func NewMockAnalyticsClient() *MockAnalyticsClient {
	return &MockAnalyticsClient{}
}

// SetHistory sets the portfolio history series to return
func (m *MockAnalyticsClient) SetHistory(points []domain.TimeSeriesPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = points
}

// SetAllocation sets the allocation records to return
func (m *MockAnalyticsClient) SetAllocation(records []domain.AllocationRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocation = records
}

// SetMetrics sets the metric series to return
func (m *MockAnalyticsClient) SetMetrics(points []domain.MetricPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = points
}

// SetError sets the error every getter returns
func (m *MockAnalyticsClient) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetPortfolioHistory returns the configured history series or error
func (m *MockAnalyticsClient) GetPortfolioHistory(accountID, period string) ([]domain.TimeSeriesPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.history, nil
}

// GetAllocationHistory returns the configured allocation records or error
func (m *MockAnalyticsClient) GetAllocationHistory(accountID, period string) ([]domain.AllocationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocationCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.allocation, nil
}

// GetMetricSeries returns the configured metric series or error
func (m *MockAnalyticsClient) GetMetricSeries(accountID string, metric domain.Metric, period string) ([]domain.MetricPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metricCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.metrics, nil
}

// CallCounts reports how many times each getter was invoked
func (m *MockAnalyticsClient) CallCounts() (history, allocation, metrics int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.historyCalls, m.allocationCalls, m.metricCalls
}
