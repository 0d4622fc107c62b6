package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/portfolio", h.HandleGetPortfolioChart)
		r.Get("/portfolio/export.png", h.HandleExportPortfolioPNG)
		r.Get("/drawdown", h.HandleGetDrawdownChart)
		r.Get("/allocation", h.HandleGetAllocationChart)
		r.Get("/metric/{metric}", func(w http.ResponseWriter, r *http.Request) {
			metric := chi.URLParam(r, "metric")
			h.HandleGetMetricChart(w, r, metric)
		})
	})
}
