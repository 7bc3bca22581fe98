package payment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment transaction data access
type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error)
	// GetOpenByBooking returns the newest initiated transaction of a booking
	// that has not yet expired.
	GetOpenByBooking(ctx context.Context, bookingID uuid.UUID, now time.Time) (*Transaction, error)
	// MarkCompleted moves an initiated transaction to completed/paid and
	// reports whether this call made the transition.
	MarkCompleted(ctx context.Context, sessionID string) (bool, error)
	// MarkClosed moves an initiated transaction to expired or failed and
	// reports whether this call made the transition.
	MarkClosed(ctx context.Context, sessionID string, status Status) (bool, error)
	UpdatePaymentStatus(ctx context.Context, sessionID string, ps PaymentStatus) error
	// ListStale returns initiated transactions whose session expiry passed
	ListStale(ctx context.Context, now time.Time, limit int) ([]*Transaction, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const transactionColumns = `id, session_id, booking_id, amount, currency, status, payment_status,
	checkout_url, metadata, expires_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, t *Transaction) error {
	query := `
		INSERT INTO payment_transactions (
			id, session_id, booking_id, amount, currency, status, payment_status,
			checkout_url, metadata, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.SessionID,
		t.BookingID,
		t.Amount,
		t.Currency,
		t.Status,
		t.PaymentStatus,
		t.CheckoutURL,
		t.Metadata,
		t.ExpiresAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// GetBySessionID returns nil, nil when no transaction matches
func (r *repository) GetBySessionID(ctx context.Context, sessionID string) (*Transaction, error) {
	var t Transaction
	query := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE session_id = $1`
	if err := r.db.GetContext(ctx, &t, query, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetOpenByBooking(ctx context.Context, bookingID uuid.UUID, now time.Time) (*Transaction, error) {
	var t Transaction
	query := `
		SELECT ` + transactionColumns + ` FROM payment_transactions
		WHERE booking_id = $1 AND status = 'initiated' AND expires_at > $2
		ORDER BY created_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &t, query, bookingID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) MarkCompleted(ctx context.Context, sessionID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status = 'completed', payment_status = 'paid', updated_at = NOW()
		WHERE session_id = $1 AND status = 'initiated'`, sessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) MarkClosed(ctx context.Context, sessionID string, status Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET status = $2, payment_status = 'unpaid', updated_at = NOW()
		WHERE session_id = $1 AND status = 'initiated'`, sessionID, status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, sessionID string, ps PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_transactions
		SET payment_status = $2, updated_at = NOW()
		WHERE session_id = $1 AND status = 'initiated' AND payment_status <> $2`, sessionID, ps)
	return err
}

func (r *repository) ListStale(ctx context.Context, now time.Time, limit int) ([]*Transaction, error) {
	var txs []*Transaction
	query := `
		SELECT ` + transactionColumns + ` FROM payment_transactions
		WHERE status = 'initiated' AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2`
	if err := r.db.SelectContext(ctx, &txs, query, now, limit); err != nil {
		return nil, err
	}
	return txs, nil
}
