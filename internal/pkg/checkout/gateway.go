// Package checkout talks to hosted payment checkout providers.
package checkout

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidRequest   = errors.New("invalid checkout request")
)

// Session statuses as reported by the provider
const (
	SessionOpen     = "open"
	SessionComplete = "complete"
	SessionExpired  = "expired"
)

// Payment statuses as reported by the provider
const (
	PaymentPaid              = "paid"
	PaymentUnpaid            = "unpaid"
	PaymentNoPaymentRequired = "no_payment_required"
)

// Webhook event types handled by the API
const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
	EventAsyncSucceeded   = "checkout.session.async_payment_succeeded"
	EventAsyncFailed      = "checkout.session.async_payment_failed"
)

// Gateway creates hosted checkout sessions and reports their state
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
	Name() string
}

// SessionRequest describes a one-line-item payment
type SessionRequest struct {
	Amount        float64
	Currency      string
	ProductName   string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
	Metadata      map[string]string
}

func (r SessionRequest) validate() error {
	switch {
	case r.Amount <= 0:
		return errors.Join(ErrInvalidRequest, errors.New("amount must be > 0"))
	case r.Currency == "":
		return errors.Join(ErrInvalidRequest, errors.New("currency is required"))
	case r.SuccessURL == "" || r.CancelURL == "":
		return errors.Join(ErrInvalidRequest, errors.New("success and cancel urls are required"))
	}
	return nil
}

// Session is the provider's view of a checkout session
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
	ExpiresAt     int64             `json:"expires_at"`
}

// IsPaid reports whether the session collected payment
func (s *Session) IsPaid() bool {
	return s.PaymentStatus == PaymentPaid || s.PaymentStatus == PaymentNoPaymentRequired
}

// IsExpired reports whether the session can no longer be paid
func (s *Session) IsExpired() bool {
	return s.Status == SessionExpired
}

// WebhookEvent is a verified provider notification about a session
type WebhookEvent struct {
	ID      string
	Type    string
	Session Session
}

// ToMinorUnits converts an amount to the smallest currency unit (cents)
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts cents back to a decimal amount
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
