package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/domain/booking"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/checkout"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/errorhandler"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/response"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/validator"
)

// maxWebhookBytes caps webhook payloads
const maxWebhookBytes = 64 << 10

// Handler handles payment HTTP requests
type Handler struct {
	service  *Service
	upgrader websocket.Upgrader
}

// NewHandler creates payment handler. allowedOrigins restricts the status
// stream's WebSocket origin; empty or "*" allows any.
func NewHandler(service *Service, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
				return false
			},
		},
	}
}

// Checkout handles POST /payments/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.Validation(r.Context(), w, errs)
		return
	}

	out, err := h.service.CreateCheckout(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, out)
}

// Status handles GET /payments/status/{session_id}
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.GetStatus(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, status)
}

// Webhook handles POST /webhook/stripe
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		response.BadRequest(w, "Invalid webhook payload")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		if errors.Is(err, checkout.ErrInvalidSignature) {
			errorhandler.HandleError(r.Context(), w, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid webhook signature", err)
			return
		}
		// Non-2xx makes the provider retry delivery.
		errorhandler.Internal(r.Context(), w, err)
		return
	}

	response.OK(w, map[string]string{"status": "success"})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrTransactionNotFound):
		response.NotFound(w, "Transaction not found")
	case errors.Is(err, booking.ErrAlreadyConfirmed):
		response.BadRequest(w, "Booking already confirmed")
	case errors.Is(err, booking.ErrBookingCancelled):
		response.BadRequest(w, "Booking cancelled")
	case errors.Is(err, checkout.ErrInvalidRequest):
		errorhandler.HandleError(r.Context(), w, http.StatusBadRequest, "BAD_REQUEST", "Booking cannot be paid", err)
	case errors.Is(err, ErrGateway):
		errorhandler.HandleError(r.Context(), w, http.StatusBadGateway, "UPSTREAM_ERROR", "Payment provider unavailable, please try again", err)
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}

// Routes returns payment router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/checkout", h.Checkout)
	r.Get("/status/{session_id}", h.Status)
	r.Get("/stream/{session_id}", h.Stream)
	return r
}

// WebhookRoutes returns webhook router (no auth, signature verification)
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/stripe", h.Webhook)
	return r
}
