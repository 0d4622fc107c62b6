package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all hover routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hover", func(r chi.Router) {
		r.Get("/ws", h.HandleHoverSocket)
	})
}
