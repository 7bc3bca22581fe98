package contact

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/errorhandler"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/validator"
)

// Handler handles contact HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates contact handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /contact (public)
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CreateContactRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	sub, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		errorhandler.Internal(r.Context(), w, err)
		return
	}
	response.OK(w, ToResponse(sub))
}

// List handles GET /admin/contact
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, err)
		return
	}

	out := make([]*SubmissionResponse, len(subs))
	for i, s := range subs {
		out[i] = ToResponse(s)
	}
	response.OK(w, out)
}

// Routes returns public contact routes. limiter throttles submissions per client.
func (h *Handler) Routes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limiter).Post("/", h.Submit)
	return r
}

// AdminRoutes returns contact inbox routes; callers mount it behind admin auth
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	return r
}
