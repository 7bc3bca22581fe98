package admin

import (
	"errors"
	"net/http"

	"github.com/apollos-hideaway/hideaway-api/internal/middleware"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/errorhandler"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login handles POST /admin/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	out, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrAdminDisabled):
			response.Forbidden(w, "Admin access is not configured")
		default:
			errorhandler.Internal(r.Context(), w, err)
		}
		return
	}

	response.OK(w, out)
}

// Me handles GET /admin/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	response.OK(w, &MeResponse{
		Email: middleware.GetSubject(r.Context()),
		Role:  middleware.GetRole(r.Context()),
	})
}
