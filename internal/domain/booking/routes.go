package booking

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns public booking router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/availability", h.Availability)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns booking management router; callers mount it behind admin auth
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{id}/cancel", h.Cancel)
	return r
}
