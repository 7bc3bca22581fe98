package villa

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/errorhandler"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/imaging"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/validator"
)

// Handler handles villa HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates villa handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /villas
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	villas, err := h.service.List(r.Context())
	if err != nil {
		errorhandler.Internal(r.Context(), w, err)
		return
	}
	response.OK(w, ToResponseList(villas))
}

// Get handles GET /villas/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(v))
}

// Create handles POST /admin/villas
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVillaRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	v, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, ToResponse(v))
}

// Update handles PUT /admin/villas/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateVillaRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	v, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(v))
}

// UploadImage handles POST /admin/villas/{id}/image (multipart field "file")
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxFileSize); err != nil {
		response.BadRequest(w, "Invalid multipart form or file too large")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "File is required")
		return
	}
	defer file.Close()

	v, err := h.service.UploadImage(r.Context(), chi.URLParam(r, "id"), file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(v))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrVillaNotFound):
		response.NotFound(w, "Villa not found")
	case errors.Is(err, ErrVillaExists):
		response.Conflict(w, "Villa with this id already exists")
	case errors.Is(err, ErrInvalidImage):
		errorhandler.HandleError(r.Context(), w, http.StatusBadRequest, "INVALID_IMAGE", "Unsupported or corrupt image", err)
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
