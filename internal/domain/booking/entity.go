package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents booking status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid checks if status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Holds reports whether a booking in this status occupies its dates
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking is a guest's reservation of one villa for a half-open date range
type Booking struct {
	ID               uuid.UUID      `db:"id"`
	VillaID          string         `db:"villa_id"`
	VillaName        string         `db:"villa_name"`
	GuestName        string         `db:"guest_name"`
	Email            string         `db:"email"`
	Phone            string         `db:"phone"`
	CheckIn          time.Time      `db:"check_in"`
	CheckOut         time.Time      `db:"check_out"`
	Guests           int            `db:"guests"`
	Nights           int            `db:"nights"`
	TotalPrice       float64        `db:"total_price"`
	Status           Status         `db:"status"`
	PaymentSessionID sql.NullString `db:"payment_session_id"`
	HoldExpiresAt    sql.NullTime   `db:"hold_expires_at"`
	CancelReason     sql.NullString `db:"cancel_reason"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// Range returns the booked dates
func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// VillaSnapshot is the locked villa row a booking is priced against
type VillaSnapshot struct {
	ID            string  `db:"id"`
	Name          string  `db:"name"`
	MaxGuests     int     `db:"max_guests"`
	PricePerNight float64 `db:"price_per_night"`
}
