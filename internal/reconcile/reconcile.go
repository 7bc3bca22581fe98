// Package reconcile periodically settles checkout sessions and releases
// lapsed booking holds.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PaymentReconciler settles stale checkout sessions
type PaymentReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// HoldExpirer cancels pending bookings whose hold lapsed
type HoldExpirer interface {
	ExpireHolds(ctx context.Context) (int, error)
}

// Runner sweeps on a fixed interval. Payments may be nil when checkout
// sessions cannot be queried from this process.
type Runner struct {
	Payments PaymentReconciler
	Bookings HoldExpirer
	Interval time.Duration

	idleLogEvery time.Duration
	lastIdleLog  time.Time
}

// Run sweeps once immediately and then on every tick until ctx is done
func (r *Runner) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	if r.idleLogEvery == 0 {
		r.idleLogEvery = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.Sweep(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep settles payments first so that holds backed by a paid session are
// confirmed before expiry is considered.
func (r *Runner) Sweep(ctx context.Context) (settled, expired int) {
	start := time.Now()

	if r.Payments != nil {
		n, err := r.Payments.Reconcile(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Payment reconciliation failed")
		}
		settled = n
	}

	if r.Bookings != nil {
		n, err := r.Bookings.ExpireHolds(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Hold expiry failed")
		}
		expired = n
	}

	if settled == 0 && expired == 0 {
		if r.lastIdleLog.IsZero() || start.Sub(r.lastIdleLog) >= r.idleLogEvery {
			log.Debug().Msg("Idle: nothing to reconcile")
			r.lastIdleLog = start
		}
		return settled, expired
	}

	log.Info().
		Int("sessions_settled", settled).
		Int("holds_expired", expired).
		Dur("took", time.Since(start)).
		Msg("Reconcile sweep done")
	return settled, expired
}
