// Package accounts exposes the account list used to scope every chart.
package accounts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/clients/account"
	"github.com/prismdash/prism/internal/domain"
)

// Service wraps the account API client.
type Service struct {
	client account.ClientInterface
	log    zerolog.Logger
}

// NewService creates a new accounts service
func NewService(client account.ClientInterface, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("service", "accounts").Logger(),
	}
}

// List returns all known accounts sorted by name for stable dropdown order.
func (s *Service) List() ([]domain.Account, error) {
	accounts, err := s.client.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return strings.ToLower(accounts[i].Name) < strings.ToLower(accounts[j].Name)
	})

	return accounts, nil
}

// Get returns a single account by ID, or nil when the ID is unknown.
func (s *Service) Get(id string) (*domain.Account, error) {
	accounts, err := s.client.ListAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}

	return nil, nil
}
