package booking

import "errors"

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrVillaNotFound     = errors.New("villa not found")
	ErrNotAvailable      = errors.New("villa not available for selected dates")
	ErrInvalidDates      = errors.New("check-out must be after check-in")
	ErrCheckInPast       = errors.New("check-in date is in the past")
	ErrStayTooLong       = errors.New("stay exceeds maximum length")
	ErrTooManyGuests     = errors.New("guest count exceeds villa capacity")
	ErrAlreadyConfirmed  = errors.New("booking already confirmed")
	ErrBookingCancelled  = errors.New("booking cancelled")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrInvalidStatus     = errors.New("invalid booking status")
)
