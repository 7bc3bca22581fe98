package booking

import (
	"time"
)

// CreateBookingRequest for POST /bookings
type CreateBookingRequest struct {
	VillaID   string `json:"villa_id" validate:"required,max=64"`
	GuestName string `json:"guest_name" validate:"required,min=1,max=120"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"required,phone"`
	CheckIn   string `json:"check_in" validate:"required,calendar_date"`
	CheckOut  string `json:"check_out" validate:"required,calendar_date"`
	Guests    int    `json:"guests" validate:"required,gte=1,lte=20"`
}

// AvailabilityResponse for GET /bookings/availability
type AvailabilityResponse struct {
	Available bool   `json:"available"`
	VillaID   string `json:"villa_id"`
}

// CancelRequest for POST /admin/bookings/{id}/cancel
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// BookingResponse is the public representation of a booking
type BookingResponse struct {
	ID               string    `json:"id"`
	VillaID          string    `json:"villa_id"`
	VillaName        string    `json:"villa_name"`
	GuestName        string    `json:"guest_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	CheckIn          string    `json:"check_in"`
	CheckOut         string    `json:"check_out"`
	Guests           int       `json:"guests"`
	Nights           int       `json:"nights"`
	TotalPrice       float64   `json:"total_price"`
	Status           Status    `json:"status"`
	PaymentSessionID *string   `json:"payment_session_id"`
	HoldExpiresAt    *string   `json:"hold_expires_at,omitempty"`
	CancelReason     string    `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(b *Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:         b.ID.String(),
		VillaID:    b.VillaID,
		VillaName:  b.VillaName,
		GuestName:  b.GuestName,
		Email:      b.Email,
		Phone:      b.Phone,
		CheckIn:    b.CheckIn.Format(time.DateOnly),
		CheckOut:   b.CheckOut.Format(time.DateOnly),
		Guests:     b.Guests,
		Nights:     b.Nights,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
	if b.PaymentSessionID.Valid {
		s := b.PaymentSessionID.String
		resp.PaymentSessionID = &s
	}
	if b.HoldExpiresAt.Valid && b.Status == StatusPending {
		s := b.HoldExpiresAt.Time.UTC().Format(time.RFC3339)
		resp.HoldExpiresAt = &s
	}
	if b.CancelReason.Valid {
		resp.CancelReason = b.CancelReason.String
	}
	return resp
}

// ToResponseList converts a slice of entities
func ToResponseList(bookings []*Booking) []*BookingResponse {
	out := make([]*BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = ToResponse(b)
	}
	return out
}
