package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/domain/villa"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	expireBatchSize  = 100
)

// VillaLookup resolves catalog entries
type VillaLookup interface {
	Get(ctx context.Context, id string) (*villa.Villa, error)
}

// Service handles booking business logic
type Service struct {
	repo      Repository
	villas    VillaLookup
	publisher events.Publisher
	holdTTL   time.Duration
	now       func() time.Time
}

// NewService creates booking service
func NewService(repo Repository, villas VillaLookup, holdTTL time.Duration) *Service {
	return &Service{
		repo:    repo,
		villas:  villas,
		holdTTL: holdTTL,
		now:     time.Now,
	}
}

// SetPublisher sets the domain event publisher (optional)
func (s *Service) SetPublisher(p events.Publisher) {
	s.publisher = p
}

// CheckAvailability reports whether the villa is free for the whole range
func (s *Service) CheckAvailability(ctx context.Context, villaID, checkIn, checkOut string) (*AvailabilityResponse, error) {
	dr, err := NewDateRange(checkIn, checkOut, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.villas.Get(ctx, villaID); err != nil {
		if errors.Is(err, villa.ErrVillaNotFound) {
			return nil, ErrVillaNotFound
		}
		return nil, err
	}

	overlap, err := s.repo.HasOverlap(ctx, villaID, dr, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResponse{Available: !overlap, VillaID: villaID}, nil
}

// Create places a pending booking that holds the dates until paid or expired
func (s *Service) Create(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	now := s.now().UTC()
	dr, err := NewDateRange(req.CheckIn, req.CheckOut, now)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:            uuid.New(),
		VillaID:       req.VillaID,
		GuestName:     req.GuestName,
		Email:         req.Email,
		Phone:         req.Phone,
		CheckIn:       dr.CheckIn,
		CheckOut:      dr.CheckOut,
		Guests:        req.Guests,
		Nights:        dr.Nights(),
		Status:        StatusPending,
		HoldExpiresAt: sql.NullTime{Time: now.Add(s.holdTTL), Valid: true},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.repo.Create(ctx, b, func(v *VillaSnapshot) error {
		if req.Guests > v.MaxGuests {
			return ErrTooManyGuests
		}
		b.VillaName = v.Name
		b.TotalPrice = TotalPrice(b.Nights, v.PricePerNight)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("villa_id", b.VillaID).
		Str("check_in", b.CheckIn.Format(time.DateOnly)).
		Str("check_out", b.CheckOut.Format(time.DateOnly)).
		Float64("total_price", b.TotalPrice).
		Msg("Booking created")

	s.publish(ctx, events.BookingCreated, b)
	return b, nil
}

// Get returns a booking by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// AttachSession links a checkout session to a pending booking
func (s *Service) AttachSession(ctx context.Context, id uuid.UUID, sessionID string, holdUntil time.Time) error {
	return s.repo.AttachSession(ctx, id, sessionID, holdUntil)
}

// Confirm marks a booking as paid. Confirming twice is a no-op.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, changed, err := s.repo.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotAvailable) {
			log.Error().
				Str("booking_id", id.String()).
				Msg("Payment received for cancelled booking whose dates were re-booked; manual refund required")
		}
		return nil, err
	}
	if changed {
		log.Info().Str("booking_id", id.String()).Msg("Booking confirmed")
		s.publish(ctx, events.BookingConfirmed, b)
	}
	return b, nil
}

// Cancel cancels a pending or confirmed booking. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	return s.cancel(ctx, id, reason, StatusPending, StatusConfirmed)
}

// CancelPending releases the hold of an unpaid booking; confirmed bookings
// are left untouched.
func (s *Service) CancelPending(ctx context.Context, id uuid.UUID, reason string) (*Booking, error) {
	return s.cancel(ctx, id, reason, StatusPending)
}

func (s *Service) cancel(ctx context.Context, id uuid.UUID, reason string, from ...Status) (*Booking, error) {
	b, changed, err := s.repo.Cancel(ctx, id, reason, from...)
	if err != nil {
		return nil, err
	}
	if changed {
		log.Info().Str("booking_id", id.String()).Str("reason", reason).Msg("Booking cancelled")
		s.publish(ctx, events.BookingCancelled, b)
	}
	return b, nil
}

// List returns bookings newest first
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// ExpireHolds cancels pending bookings whose hold lapsed without a live
// checkout session.
func (s *Service) ExpireHolds(ctx context.Context) (int, error) {
	stale, err := s.repo.ListExpiredHolds(ctx, s.now().UTC(), expireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, b := range stale {
		if _, err := s.CancelPending(ctx, b.ID, "hold expired"); err != nil {
			log.Warn().Err(err).Str("booking_id", b.ID.String()).Msg("Failed to expire booking hold")
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, Payload(b)); err != nil {
		log.Warn().Err(err).Str("event", eventType).Str("booking_id", b.ID.String()).Msg("Failed to publish booking event")
	}
}

// Payload converts a booking to its event payload
func Payload(b *Booking) events.BookingPayload {
	return events.BookingPayload{
		BookingID:  b.ID.String(),
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
		Status:     string(b.Status),
		Reason:     b.CancelReason.String,
	}
}
