package hideaway

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPaymentTimeout is returned when the attempt bound is reached
	// before the payment settles.
	ErrPaymentTimeout = errors.New("payment status check timed out")
	// ErrPaymentExpired is returned when the checkout session expired
	ErrPaymentExpired = errors.New("payment session expired")
)

// PollConfig bounds WaitForPayment
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollConfig matches the web client: five checks two seconds apart
var DefaultPollConfig = PollConfig{MaxAttempts: 5, Interval: 2 * time.Second}

// WaitForPayment polls the status of sessionID until it is paid or expired,
// or until cfg.MaxAttempts requests were made. It returns the paid status on
// success and an error otherwise. Request failures end polling immediately.
// The booking is left untouched either way.
func (c *Client) WaitForPayment(ctx context.Context, sessionID string, cfg PollConfig) (*PaymentStatus, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultPollConfig.MaxAttempts
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		status, err := c.PaymentStatus(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if status.Paid() {
			return status, nil
		}
		if status.Expired() {
			return status, ErrPaymentExpired
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		timer := time.NewTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, ErrPaymentTimeout
}
