// Package account provides a client for the account-api service,
// which owns the list of portfolio accounts shown in the dashboard.
package account

import (
	"encoding/json"
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

// ClientInterface defines the account-api operations consumers depend on
type ClientInterface interface {
	ListAccounts() ([]domain.Account, error)
}

// Client handles account-api requests with caching.
type Client struct {
	baseURL   string
	client    *http.Client
	log       zerolog.Logger
	cacheRepo *clientdata.Repository
}

// NewClient creates a new account-api client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:       log.With().Str("client", "account-api").Logger(),
		cacheRepo: cacheRepo,
	}
}

// ListAccounts returns every account the dashboard can chart.
// Accounts change rarely, so cached results are served for hours.
func (c *Client) ListAccounts() ([]domain.Account, error) {
	const cacheKey = "all"

	if c.cacheRepo != nil {
		cached, err := c.cacheRepo.GetIfFresh(clientdata.TableAccounts, cacheKey)
		if err == nil && cached != nil {
			var accounts []domain.Account
			if err := msgpack.Unmarshal(cached, &accounts); err == nil {
				c.log.Debug().Int("count", len(accounts)).Msg("Cache hit for accounts")
				return accounts, nil
			}
		}
	}

	url := fmt.Sprintf("%s/accounts", c.baseURL)

	resp, err := c.client.Get(url)
	if err != nil {
		if stale, ok := c.staleAccounts(cacheKey); ok {
			c.log.Warn().Err(err).Msg("API failed, using stale account list")
			return stale, nil
		}
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.staleAccounts(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Msg("API returned error, using stale account list")
			return stale, nil
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var accounts []domain.Account
	if err := json.Unmarshal(body, &accounts); err != nil {
		if stale, ok := c.staleAccounts(cacheKey); ok {
			c.log.Warn().Err(err).Msg("Failed to parse account list, using stale data")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse account list: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(clientdata.TableAccounts, cacheKey, accounts, clientdata.TTLAccounts); err != nil {
			c.log.Warn().Err(err).Msg("Failed to cache account list")
		}
	}

	c.log.Info().Int("count", len(accounts)).Msg("Fetched account list")
	return accounts, nil
}

// staleAccounts returns the cached account list even when expired.
// Stale data beats an empty dashboard when the upstream is down.
func (c *Client) staleAccounts(cacheKey string) ([]domain.Account, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}
	cached, err := c.cacheRepo.Get(clientdata.TableAccounts, cacheKey)
	if err != nil || cached == nil {
		return nil, false
	}
	var accounts []domain.Account
	if err := msgpack.Unmarshal(cached, &accounts); err != nil {
		return nil, false
	}
	return accounts, true
}
