package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/errorhandler"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Availability handles GET /bookings/availability?villa_id=&check_in=&check_out=
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	villaID, checkIn, checkOut := q.Get("villa_id"), q.Get("check_in"), q.Get("check_out")
	if villaID == "" || checkIn == "" || checkOut == "" {
		response.BadRequest(w, "villa_id, check_in and check_out are required")
		return
	}

	result, err := h.service.CheckAvailability(r.Context(), villaID, checkIn, checkOut)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	b, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(b))
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Booking not found")
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(b))
}

// List handles GET /admin/bookings?status=&villa_id=&limit=&offset=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	bookings, err := h.service.List(r.Context(), ListFilter{
		Status:  Status(q.Get("status")),
		VillaID: q.Get("villa_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponseList(bookings))
}

// Cancel handles POST /admin/bookings/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Booking not found")
		return
	}

	var req CancelRequest
	if err := response.DecodeJSON(r, &req); err != nil && !errors.Is(err, response.ErrEmptyBody) {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}
	if req.Reason == "" {
		req.Reason = "cancelled by admin"
	}

	b, err := h.service.Cancel(r.Context(), id, req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ToResponse(b))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotAvailable):
		response.Error(w, http.StatusBadRequest, "NOT_AVAILABLE", "Villa not available for selected dates")
	case errors.Is(err, ErrVillaNotFound):
		response.NotFound(w, "Villa not found")
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrInvalidDates):
		response.Error(w, http.StatusBadRequest, "INVALID_DATES", "Check-out must be after check-in")
	case errors.Is(err, ErrCheckInPast):
		response.Error(w, http.StatusBadRequest, "INVALID_DATES", "Check-in date cannot be in the past")
	case errors.Is(err, ErrStayTooLong):
		response.Error(w, http.StatusBadRequest, "INVALID_DATES", "Stays are limited to "+strconv.Itoa(MaxStayNights)+" nights")
	case errors.Is(err, ErrTooManyGuests):
		response.ValidationError(w, map[string]string{"guests": "guests exceeds the villa's maximum capacity"})
	case errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, "Invalid booking status")
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}
