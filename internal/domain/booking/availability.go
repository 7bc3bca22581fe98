package booking

import (
	"fmt"
	"time"
)

// MaxStayNights bounds a single reservation
const MaxStayNights = 60

// DateRange is a half-open interval of calendar dates [CheckIn, CheckOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp. A timestamp is
// reduced to its calendar date in the offset it carries. The result is
// midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, _, err := parseDate(s)
	return t, err
}

func parseDate(s string) (t time.Time, timestamp bool, err error) {
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, false, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q", s)
	}
	return truncateDate(t), true, nil
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange parses and validates a stay. today is the current UTC date.
func NewDateRange(checkIn, checkOut string, today time.Time) (DateRange, error) {
	in, timestamp, err := parseDate(checkIn)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %v", ErrInvalidDates, err)
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: %v", ErrInvalidDates, err)
	}

	r := DateRange{CheckIn: in, CheckOut: out}
	if !in.Before(out) {
		return DateRange{}, ErrInvalidDates
	}
	earliest := truncateDate(today.UTC())
	if timestamp {
		// Browsers east of UTC send local midnight as the previous UTC day.
		earliest = earliest.AddDate(0, 0, -1)
	}
	if in.Before(earliest) {
		return DateRange{}, ErrCheckInPast
	}
	if r.Nights() > MaxStayNights {
		return DateRange{}, ErrStayTooLong
	}
	return r, nil
}

// Nights returns the number of nights in the range
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
// Back-to-back stays (one checks out the day the other checks in) do not.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// OverlapsAny reports whether r overlaps any of existing
func (r DateRange) OverlapsAny(existing []DateRange) bool {
	for _, e := range existing {
		if r.Overlaps(e) {
			return true
		}
	}
	return false
}

// TotalPrice returns nights × nightly rate rounded to cents
func TotalPrice(nights int, pricePerNight float64) float64 {
	cents := int64(pricePerNight*100+0.5) * int64(nights)
	return float64(cents) / 100
}
