// Package handlers provides HTTP handlers for chart data endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/domain"
	"github.com/prismdash/prism/internal/modules/charts"
)

// Handler handles chart HTTP requests
type Handler struct {
	service *charts.Service
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service *charts.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// requestParams pulls the account/period selectors every chart endpoint shares.
func (h *Handler) requestParams(w http.ResponseWriter, r *http.Request) (accountID, period string, ok bool) {
	accountID = r.URL.Query().Get("account")
	if accountID == "" {
		h.writeError(w, http.StatusBadRequest, "account parameter is required")
		return "", "", false
	}
	return accountID, r.URL.Query().Get("period"), true
}

// HandleGetPortfolioChart handles GET /api/charts/portfolio
func (h *Handler) HandleGetPortfolioChart(w http.ResponseWriter, r *http.Request) {
	accountID, period, ok := h.requestParams(w, r)
	if !ok {
		return
	}

	var opts charts.Options
	if smooth := r.URL.Query().Get("smooth"); smooth != "" {
		n, err := strconv.Atoi(smooth)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, "smooth parameter must be a non-negative integer")
			return
		}
		opts.SmoothPeriod = n
	}

	chart, err := h.service.GetPortfolioChart(accountID, period, opts)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build portfolio chart")
		return
	}

	h.writeChart(w, chart)
}

// HandleGetDrawdownChart handles GET /api/charts/drawdown
func (h *Handler) HandleGetDrawdownChart(w http.ResponseWriter, r *http.Request) {
	accountID, period, ok := h.requestParams(w, r)
	if !ok {
		return
	}

	chart, err := h.service.GetDrawdownChart(accountID, period)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build drawdown chart")
		return
	}

	h.writeChart(w, chart)
}

// HandleGetAllocationChart handles GET /api/charts/allocation
func (h *Handler) HandleGetAllocationChart(w http.ResponseWriter, r *http.Request) {
	accountID, period, ok := h.requestParams(w, r)
	if !ok {
		return
	}

	chart, err := h.service.GetAllocationChart(accountID, period)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build allocation chart")
		return
	}

	h.writeChart(w, chart)
}

// HandleGetMetricChart handles GET /api/charts/metric/{metric}
func (h *Handler) HandleGetMetricChart(w http.ResponseWriter, r *http.Request, metricName string) {
	accountID, period, ok := h.requestParams(w, r)
	if !ok {
		return
	}

	metric, err := domain.ParseMetric(metricName)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	chart, err := h.service.GetMetricChart(accountID, metric, period)
	if err != nil {
		h.writeServiceError(w, err, "Failed to build metric chart")
		return
	}

	h.writeChart(w, chart)
}

// HandleExportPortfolioPNG handles GET /api/charts/portfolio/export.png
func (h *Handler) HandleExportPortfolioPNG(w http.ResponseWriter, r *http.Request) {
	accountID, period, ok := h.requestParams(w, r)
	if !ok {
		return
	}

	png, err := h.service.GetPortfolioPNG(accountID, period)
	if err != nil {
		if errors.Is(err, charts.ErrInvalidPeriod) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Str("account", accountID).Msg("Failed to render portfolio PNG")
		h.writeError(w, http.StatusInternalServerError, "Failed to render portfolio PNG")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"portfolio-%s.png\"", accountID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Error().Err(err).Msg("Failed to write PNG response")
	}
}

// writeChart wraps a chart payload in the standard response envelope.
func (h *Handler) writeChart(w http.ResponseWriter, chart interface{}) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": chart,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeServiceError maps service failures onto status codes: bad selectors
// are the caller's fault, everything else is ours.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, charts.ErrInvalidPeriod) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg(logMsg)
	h.writeError(w, http.StatusInternalServerError, logMsg)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
