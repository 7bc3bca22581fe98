package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apollos-hideaway/hideaway-api/internal/middleware"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/jwt"
)

// Sections are the management routers mounted behind admin auth
type Sections struct {
	Bookings http.Handler
	Villas   http.Handler
	Contact  http.Handler
}

// Routes returns admin router
func (h *Handler) Routes(jwtSvc *jwt.Service, loginLimiter func(http.Handler) http.Handler, sections Sections) chi.Router {
	r := chi.NewRouter()

	// Public
	login := r.With()
	if loginLimiter != nil {
		login = r.With(loginLimiter)
	}
	login.Post("/auth/login", h.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(jwtSvc))
		r.Use(middleware.RequireAdmin())

		r.Get("/auth/me", h.Me)
		if sections.Bookings != nil {
			r.Mount("/bookings", sections.Bookings)
		}
		if sections.Villas != nil {
			r.Mount("/villas", sections.Villas)
		}
		if sections.Contact != nil {
			r.Mount("/contact", sections.Contact)
		}
	})

	return r
}
