package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/database"
)

// ListFilter narrows admin booking listings
type ListFilter struct {
	Status  Status
	VillaID string
	Limit   int
	Offset  int
}

// Repository defines booking data access
type Repository interface {
	// Create locks the villa row, hands it to prepare to price and validate
	// b, re-checks overlap and inserts b, all in one transaction.
	Create(ctx context.Context, b *Booking, prepare func(v *VillaSnapshot) error) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	HasOverlap(ctx context.Context, villaID string, r DateRange, exclude uuid.UUID) (bool, error)
	AttachSession(ctx context.Context, id uuid.UUID, sessionID string, holdUntil time.Time) error
	// Confirm moves a booking to confirmed. changed is false when it already was.
	Confirm(ctx context.Context, id uuid.UUID) (b *Booking, changed bool, err error)
	// Cancel moves a booking in one of from to cancelled. changed is false
	// when the booking was not in any of them.
	Cancel(ctx context.Context, id uuid.UUID, reason string, from ...Status) (b *Booking, changed bool, err error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const bookingColumns = `id, villa_id, villa_name, guest_name, email, phone, check_in, check_out,
	guests, nights, total_price, status, payment_session_id, hold_expires_at, cancel_reason,
	created_at, updated_at`

const overlapQuery = `
	SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE villa_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND check_in < $3::date
		  AND $2::date < check_out
		  AND id <> $4
	)`

func (r *repository) Create(ctx context.Context, b *Booking, prepare func(v *VillaSnapshot) error) error {
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		v, err := lockVilla(ctx, tx, b.VillaID)
		if err != nil {
			return err
		}
		if err := prepare(v); err != nil {
			return err
		}

		var overlap bool
		if err := tx.GetContext(ctx, &overlap, overlapQuery, b.VillaID, b.CheckIn, b.CheckOut, b.ID); err != nil {
			return fmt.Errorf("overlap check: %w", err)
		}
		if overlap {
			return ErrNotAvailable
		}

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO bookings (
				id, villa_id, villa_name, guest_name, email, phone, check_in, check_out,
				guests, nights, total_price, status, payment_session_id, hold_expires_at,
				created_at, updated_at
			) VALUES (
				:id, :villa_id, :villa_name, :guest_name, :email, :phone, :check_in, :check_out,
				:guests, :nights, :total_price, :status, :payment_session_id, :hold_expires_at,
				:created_at, :updated_at
			)`, b)
		return err
	})
	return mapWriteError(err)
}

func lockVilla(ctx context.Context, tx *sqlx.Tx, villaID string) (*VillaSnapshot, error) {
	var v VillaSnapshot
	err := tx.GetContext(ctx, &v, `
		SELECT id, name, max_guests, price_per_night
		FROM villas WHERE id = $1
		FOR UPDATE`, villaID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVillaNotFound
	}
	return &v, err
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsExclusionViolation(err):
		return ErrNotAvailable
	case database.IsForeignKeyViolation(err):
		return ErrVillaNotFound
	}
	return err
}

// GetByID returns nil, nil when the booking does not exist
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return getBooking(ctx, r.db, id, false)
}

func getBooking(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, forUpdate bool) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var b Booking
	if err := sqlx.GetContext(ctx, q, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) HasOverlap(ctx context.Context, villaID string, dr DateRange, exclude uuid.UUID) (bool, error) {
	var overlap bool
	err := r.db.GetContext(ctx, &overlap, overlapQuery, villaID, dr.CheckIn, dr.CheckOut, exclude)
	return overlap, err
}

// AttachSession records the checkout session on a pending booking and
// extends its hold to cover the session lifetime.
func (r *repository) AttachSession(ctx context.Context, id uuid.UUID, sessionID string, holdUntil time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET payment_session_id = $2,
		    hold_expires_at = GREATEST(COALESCE(hold_expires_at, $3), $3),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, sessionID, holdUntil)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) Confirm(ctx context.Context, id uuid.UUID) (*Booking, bool, error) {
	var (
		out     *Booking
		changed bool
	)
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		b, err := getBooking(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrBookingNotFound
		}

		switch b.Status {
		case StatusConfirmed:
			out = b
			return nil
		case StatusCancelled:
			// Late payment for a released hold: reinstate only if the dates are still free.
			if _, err := lockVilla(ctx, tx, b.VillaID); err != nil {
				return err
			}
			var overlap bool
			if err := tx.GetContext(ctx, &overlap, overlapQuery, b.VillaID, b.CheckIn, b.CheckOut, b.ID); err != nil {
				return fmt.Errorf("overlap check: %w", err)
			}
			if overlap {
				return ErrNotAvailable
			}
		}

		if err := tx.GetContext(ctx, &b.UpdatedAt, `
			UPDATE bookings
			SET status = 'confirmed', hold_expires_at = NULL, cancel_reason = NULL, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`, id); err != nil {
			return err
		}
		b.Status = StatusConfirmed
		b.HoldExpiresAt = sql.NullTime{}
		b.CancelReason = sql.NullString{}
		out, changed = b, true
		return nil
	})
	if err != nil {
		return nil, false, mapWriteError(err)
	}
	return out, changed, nil
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason string, from ...Status) (*Booking, bool, error) {
	if len(from) == 0 {
		from = []Status{StatusPending, StatusConfirmed}
	}
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	var b Booking
	err := r.db.GetContext(ctx, &b, `
		UPDATE bookings
		SET status = 'cancelled', cancel_reason = NULLIF($2, ''), hold_expires_at = NULL, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+bookingColumns, id, reason, pq.Array(statuses))
	if err == nil {
		return &b, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, ErrBookingNotFound
	}
	return current, false, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.VillaID != "" {
		args = append(args, filter.VillaID)
		where = append(where, fmt.Sprintf("villa_id = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListExpiredHolds returns pending bookings past their hold with no checkout
// session that could still be paid.
func (r *repository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]*Booking, error) {
	var bookings []*Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT `+bookingColumns+` FROM bookings b
		WHERE b.status = 'pending'
		  AND b.hold_expires_at IS NOT NULL
		  AND b.hold_expires_at < $1
		  AND NOT EXISTS (
			SELECT 1 FROM payment_transactions pt
			WHERE pt.booking_id = b.id
			  AND pt.status = 'initiated'
			  AND (pt.expires_at IS NULL OR pt.expires_at > $1)
		  )
		ORDER BY b.hold_expires_at
		LIMIT $2`, now, limit)
	return bookings, err
}
