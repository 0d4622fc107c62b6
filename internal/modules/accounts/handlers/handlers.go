// Package handlers provides HTTP handlers for the account list.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/modules/accounts"
)

// Handler handles account HTTP requests
type Handler struct {
	service *accounts.Service
	log     zerolog.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(service *accounts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "accounts").Logger(),
	}
}

// HandleListAccounts returns all accounts available for chart scoping
func (h *Handler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		h.writeError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": list,
		"metadata": map[string]interface{}{
			"count":     len(list),
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetAccount returns one account by ID
func (h *Handler) HandleGetAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	account, err := h.service.Get(accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account", accountID).Msg("Failed to get account")
		h.writeError(w, http.StatusInternalServerError, "Failed to get account")
		return
	}
	if account == nil {
		h.writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": account,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
