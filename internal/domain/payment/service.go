package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/domain/booking"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/checkout"
)

const (
	// sessionTTL is the lifetime requested for hosted checkout sessions.
	// Stripe accepts 30 minutes to 24 hours.
	sessionTTL      = 30 * time.Minute
	reconcileBatch  = 100
	defaultCurrency = "usd"
)

// BookingService defines the booking operations payment drives
type BookingService interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	AttachSession(ctx context.Context, id uuid.UUID, sessionID string, holdUntil time.Time) error
	Confirm(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	CancelPending(ctx context.Context, id uuid.UUID, reason string) (*booking.Booking, error)
}

// Service runs the checkout session state machine
type Service struct {
	repo     Repository
	bookings BookingService
	gateway  checkout.Gateway
	broker   StatusBroker
	currency string
	now      func() time.Time
}

// NewService creates payment service
func NewService(repo Repository, bookings BookingService, gateway checkout.Gateway, currency string) *Service {
	if currency == "" {
		currency = defaultCurrency
	}
	return &Service{
		repo:     repo,
		bookings: bookings,
		gateway:  gateway,
		broker:   NewMemoryBroker(),
		currency: strings.ToLower(currency),
		now:      time.Now,
	}
}

// SetBroker replaces the status broker used by the stream endpoint
func (s *Service) SetBroker(b StatusBroker) {
	s.broker = b
}

// Broker returns the status broker
func (s *Service) Broker() StatusBroker {
	return s.broker
}

// CreateCheckout opens a hosted checkout session for a pending booking.
// An unexpired session already open for the booking is returned as is.
func (s *Service) CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, booking.ErrBookingNotFound
	}
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case booking.StatusConfirmed:
		return nil, booking.ErrAlreadyConfirmed
	case booking.StatusCancelled:
		return nil, booking.ErrBookingCancelled
	}

	now := s.now().UTC()
	open, err := s.repo.GetOpenByBooking(ctx, b.ID, now)
	if err != nil {
		return nil, err
	}
	if open != nil && open.CheckoutURL != "" {
		return &CheckoutResponse{URL: open.CheckoutURL, SessionID: open.SessionID}, nil
	}

	origin := strings.TrimRight(req.OriginURL, "/")
	expiresAt := now.Add(sessionTTL)
	metadata := map[string]string{
		"booking_id":  b.ID.String(),
		"villa_name":  b.VillaName,
		"guest_email": b.Email,
	}

	sess, err := s.gateway.CreateSession(ctx, checkout.SessionRequest{
		Amount:        b.TotalPrice,
		Currency:      s.currency,
		ProductName:   b.VillaName,
		Description:   fmt.Sprintf("%d night(s), %s to %s", b.Nights, b.CheckIn.Format(time.DateOnly), b.CheckOut.Format(time.DateOnly)),
		CustomerEmail: b.Email,
		SuccessURL:    origin + "/booking-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     origin + "/booking",
		ExpiresAt:     expiresAt,
		Metadata:      metadata,
	})
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidRequest) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if sess.ExpiresAt > 0 {
		expiresAt = time.Unix(sess.ExpiresAt, 0).UTC()
	}

	t := &Transaction{
		ID:            uuid.New(),
		SessionID:     sess.ID,
		BookingID:     b.ID,
		Amount:        b.TotalPrice,
		Currency:      s.currency,
		Status:        StatusInitiated,
		PaymentStatus: PaymentPending,
		CheckoutURL:   sess.URL,
		Metadata:      metadata,
		ExpiresAt:     sql.NullTime{Time: expiresAt, Valid: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if err := s.bookings.AttachSession(ctx, b.ID, sess.ID, expiresAt); err != nil {
		if errors.Is(err, booking.ErrInvalidTransition) {
			// Cancelled while the session was being created.
			return nil, booking.ErrBookingCancelled
		}
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("session_id", sess.ID).
		Str("gateway", s.gateway.Name()).
		Float64("amount", b.TotalPrice).
		Msg("Checkout session created")

	return &CheckoutResponse{URL: sess.URL, SessionID: sess.ID}, nil
}

// Lookup returns the stored transaction for a session without asking the
// gateway.
func (s *Service) Lookup(ctx context.Context, sessionID string) (*Transaction, error) {
	t, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

// GetStatus reports a session's state, refreshing it from the gateway
// until it is terminal.
func (s *Service) GetStatus(ctx context.Context, sessionID string) (*StatusResponse, error) {
	t, err := s.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if t.IsTerminal() {
		return ToStatusResponse(t), nil
	}

	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, checkout.ErrSessionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return s.apply(ctx, t, sess)
}

// HandleWebhook verifies and applies a gateway notification
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}

	l := log.With().Str("event_id", event.ID).Str("event_type", event.Type).Str("session_id", event.Session.ID).Logger()

	switch event.Type {
	case checkout.EventSessionCompleted, checkout.EventAsyncSucceeded,
		checkout.EventSessionExpired, checkout.EventAsyncFailed:
	default:
		l.Debug().Msg("Ignoring webhook event")
		return nil
	}

	t, err := s.repo.GetBySessionID(ctx, event.Session.ID)
	if err != nil {
		return err
	}
	if t == nil {
		l.Warn().Msg("Webhook for unknown checkout session")
		return nil
	}

	switch event.Type {
	case checkout.EventAsyncFailed:
		_, err = s.close(ctx, t, StatusFailed)
	default:
		_, err = s.apply(ctx, t, &event.Session)
	}
	return err
}

// Reconcile re-checks initiated sessions whose expiry has passed, for
// clients that never came back and webhooks that never arrived.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	stale, err := s.repo.ListStale(ctx, s.now().UTC(), reconcileBatch)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, t := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}

		sess, err := s.gateway.GetSession(ctx, t.SessionID)
		switch {
		case errors.Is(err, checkout.ErrSessionNotFound):
			_, err = s.close(ctx, t, StatusFailed)
		case err != nil:
			log.Warn().Err(err).Str("session_id", t.SessionID).Msg("Failed to refresh checkout session")
			continue
		default:
			_, err = s.apply(ctx, t, sess)
		}
		if err != nil {
			log.Warn().Err(err).Str("session_id", t.SessionID).Msg("Failed to reconcile checkout session")
			continue
		}
		settled++
	}
	return settled, nil
}

// apply moves t to the state the gateway reports
func (s *Service) apply(ctx context.Context, t *Transaction, sess *checkout.Session) (*StatusResponse, error) {
	switch {
	case sess.IsPaid():
		return s.complete(ctx, t)
	case sess.IsExpired():
		return s.close(ctx, t, StatusExpired)
	}

	if sess.PaymentStatus == checkout.PaymentUnpaid && t.PaymentStatus != PaymentUnpaid {
		if err := s.repo.UpdatePaymentStatus(ctx, t.SessionID, PaymentUnpaid); err != nil {
			return nil, err
		}
		t.PaymentStatus = PaymentUnpaid
	}
	return ToStatusResponse(t), nil
}

// complete confirms the booking, then marks the transaction paid. The
// order makes a retry after a crash in between converge.
func (s *Service) complete(ctx context.Context, t *Transaction) (*StatusResponse, error) {
	if _, err := s.bookings.Confirm(ctx, t.BookingID); err != nil {
		if !errors.Is(err, booking.ErrNotAvailable) {
			return nil, err
		}
		log.Error().
			Str("session_id", t.SessionID).
			Str("booking_id", t.BookingID.String()).
			Float64("amount", t.Amount).
			Msg("Payment collected but booking could not be confirmed; refund required")
	}

	changed, err := s.repo.MarkCompleted(ctx, t.SessionID)
	if err != nil {
		return nil, err
	}
	t.Status, t.PaymentStatus = StatusCompleted, PaymentPaid

	resp := ToStatusResponse(t)
	if changed {
		log.Info().Str("session_id", t.SessionID).Str("booking_id", t.BookingID.String()).Msg("Payment completed")
		s.notify(ctx, resp)
	}
	return resp, nil
}

// close expires or fails the transaction and releases the booking hold
func (s *Service) close(ctx context.Context, t *Transaction, status Status) (*StatusResponse, error) {
	changed, err := s.repo.MarkClosed(ctx, t.SessionID, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Another path settled it first; report what is stored.
		current, err := s.repo.GetBySessionID(ctx, t.SessionID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			return ToStatusResponse(current), nil
		}
	}
	t.Status, t.PaymentStatus = status, PaymentUnpaid

	resp := ToStatusResponse(t)
	if changed {
		s.releaseHold(ctx, t, status)
		log.Info().Str("session_id", t.SessionID).Str("status", string(status)).Msg("Payment session closed")
		s.notify(ctx, resp)
	}
	return resp, nil
}

// releaseHold cancels the pending booking unless a newer session for it
// is still open.
func (s *Service) releaseHold(ctx context.Context, t *Transaction, status Status) {
	l := log.With().Str("booking_id", t.BookingID.String()).Str("session_id", t.SessionID).Logger()

	open, err := s.repo.GetOpenByBooking(ctx, t.BookingID, s.now().UTC())
	if err != nil {
		l.Warn().Err(err).Msg("Failed to look up open checkout sessions")
		return
	}
	if open != nil {
		l.Info().Str("open_session_id", open.SessionID).Msg("Booking hold kept for newer checkout session")
		return
	}
	if _, err := s.bookings.CancelPending(ctx, t.BookingID, "payment session "+string(status)); err != nil {
		l.Warn().Err(err).Msg("Failed to release booking hold")
	}
}

func (s *Service) notify(ctx context.Context, resp *StatusResponse) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, resp); err != nil {
		log.Warn().Err(err).Str("session_id", resp.SessionID).Msg("Failed to publish payment status")
	}
}
