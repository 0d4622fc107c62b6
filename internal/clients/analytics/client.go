// Package analytics provides the analytics-engine API client with caching.
// The engine computes valuation, allocation and metric series server-side;
// this client only fetches, decodes and caches them.
package analytics

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/prismdash/prism/internal/clientdata"
	"github.com/prismdash/prism/internal/domain"
)

// ClientInterface defines the analytics-engine operations consumers depend on
type ClientInterface interface {
	GetPortfolioHistory(accountID, period string) ([]domain.TimeSeriesPoint, error)
	GetAllocationHistory(accountID, period string) ([]domain.AllocationRecord, error)
	GetMetricSeries(accountID string, metric domain.Metric, period string) ([]domain.MetricPoint, error)
}

// Client for the analytics-engine API
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new analytics-engine client
// cacheRepo is optional - if nil, caching is disabled
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log.With().Str("client", "analytics-engine").Logger(),
		cacheRepo: cacheRepo,
	}
}

// GetPortfolioHistory fetches the valuation series for an account with cache.
// If the API fails, returns stale cached data if available (stale data > no data).
func (c *Client) GetPortfolioHistory(accountID, period string) ([]domain.TimeSeriesPoint, error) {
	cacheKey := accountID + ":" + period

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TablePortfolioHistory, cacheKey)
		if err == nil && data != nil {
			var cached []domain.TimeSeriesPoint
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("account", accountID).
					Str("period", period).
					Int("points", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/portfolio/%s/history?period=%s", c.baseURL, accountID, period)
	c.log.Debug().Str("url", url).Msg("Fetching portfolio history")

	body, err := c.fetch(url)
	if err != nil {
		if stale, ok := c.stalePortfolioHistory(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Str("period", period).
				Msg("API failed, using stale portfolio history")
			return stale, nil
		}
		return nil, err
	}

	points, err := decodeValuationHistory(body)
	if err != nil {
		if stale, ok := c.stalePortfolioHistory(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Msg("Failed to parse portfolio history, using stale data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TablePortfolioHistory, cacheKey, points, clientdata.TTLPortfolioHistory); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache portfolio history")
		}
	}

	c.log.Info().
		Str("account", accountID).
		Str("period", period).
		Int("points", len(points)).
		Msg("Fetched portfolio history")

	return points, nil
}

// GetAllocationHistory fetches allocation records for an account with cache.
// Records come back in their canonical resolved form, one per raw upstream row.
func (c *Client) GetAllocationHistory(accountID, period string) ([]domain.AllocationRecord, error) {
	cacheKey := accountID + ":" + period

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableAllocationHistory, cacheKey)
		if err == nil && data != nil {
			var cached []domain.AllocationRecord
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("account", accountID).
					Str("period", period).
					Int("records", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/portfolio/%s/allocation?period=%s", c.baseURL, accountID, period)
	c.log.Debug().Str("url", url).Msg("Fetching allocation history")

	body, err := c.fetch(url)
	if err != nil {
		if stale, ok := c.staleAllocationHistory(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Str("period", period).
				Msg("API failed, using stale allocation history")
			return stale, nil
		}
		return nil, err
	}

	records, err := decodeAllocationHistory(body)
	if err != nil {
		if stale, ok := c.staleAllocationHistory(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Msg("Failed to parse allocation history, using stale data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableAllocationHistory, cacheKey, records, clientdata.TTLAllocationHistory); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache allocation history")
		}
	}

	c.log.Info().
		Str("account", accountID).
		Str("period", period).
		Int("records", len(records)).
		Msg("Fetched allocation history")

	return records, nil
}

// GetMetricSeries fetches a precomputed metric series for an account with cache.
func (c *Client) GetMetricSeries(accountID string, metric domain.Metric, period string) ([]domain.MetricPoint, error) {
	cacheKey := accountID + ":" + string(metric) + ":" + period

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh(clientdata.TableMetricSeries, cacheKey)
		if err == nil && data != nil {
			var cached []domain.MetricPoint
			if err := msgpack.Unmarshal(data, &cached); err == nil {
				c.log.Debug().
					Str("account", accountID).
					Str("metric", string(metric)).
					Int("points", len(cached)).
					Msg("Cache hit")
				return cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/portfolio/%s/metrics/%s?period=%s", c.baseURL, accountID, metric, period)
	c.log.Debug().Str("url", url).Msg("Fetching metric series")

	body, err := c.fetch(url)
	if err != nil {
		if stale, ok := c.staleMetricSeries(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Str("metric", string(metric)).
				Msg("API failed, using stale metric series")
			return stale, nil
		}
		return nil, err
	}

	points, err := decodeMetricSeries(metric, body)
	if err != nil {
		if stale, ok := c.staleMetricSeries(cacheKey); ok {
			c.log.Warn().
				Err(err).
				Str("account", accountID).
				Str("metric", string(metric)).
				Msg("Failed to parse metric series, using stale data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableMetricSeries, cacheKey, points, clientdata.TTLMetricSeries); err != nil {
			c.log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache metric series")
		}
	}

	c.log.Info().
		Str("account", accountID).
		Str("metric", string(metric)).
		Int("points", len(points)).
		Msg("Fetched metric series")

	return points, nil
}

// fetch performs a GET and returns the body for 200 responses.
func (c *Client) fetch(url string) ([]byte, error) {
	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// stalePortfolioHistory retrieves cached points even if expired.
// Use this as a fallback when API calls fail - stale data is better than no data.
func (c *Client) stalePortfolioHistory(cacheKey string) ([]domain.TimeSeriesPoint, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TablePortfolioHistory, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []domain.TimeSeriesPoint
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached, true
}

func (c *Client) staleAllocationHistory(cacheKey string) ([]domain.AllocationRecord, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableAllocationHistory, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []domain.AllocationRecord
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached, true
}

func (c *Client) staleMetricSeries(cacheKey string) ([]domain.MetricPoint, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(clientdata.TableMetricSeries, cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached []domain.MetricPoint
	if err := msgpack.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return cached, true
}
