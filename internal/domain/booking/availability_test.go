package booking

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-06-01", "2026-06-01"},
		{"2026-06-01T00:00:00Z", "2026-06-01"},
		{"2026-06-01T23:30:00Z", "2026-06-01"},
		// A browser in UTC+3 sends local midnight as the previous UTC evening.
		{"2026-06-01T00:00:00+03:00", "2026-06-01"},
		{"2026-05-31T21:00:00.000Z", "2026-05-31"},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if got.Format(time.DateOnly) != tc.want || got.Location() != time.UTC {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseDate("01/06/2026"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestOverlapIsHalfOpen(t *testing.T) {
	base := DateRange{CheckIn: date("2026-06-10"), CheckOut: date("2026-06-15")}

	tests := []struct {
		name string
		r    DateRange
		want bool
	}{
		{"identical", base, true},
		{"inside", DateRange{date("2026-06-11"), date("2026-06-12")}, true},
		{"straddles start", DateRange{date("2026-06-08"), date("2026-06-11")}, true},
		{"straddles end", DateRange{date("2026-06-14"), date("2026-06-20")}, true},
		{"contains", DateRange{date("2026-06-01"), date("2026-06-30")}, true},
		{"checks out on check-in day", DateRange{date("2026-06-05"), date("2026-06-10")}, false},
		{"checks in on check-out day", DateRange{date("2026-06-15"), date("2026-06-18")}, false},
		{"disjoint", DateRange{date("2026-07-01"), date("2026-07-03")}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.r); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			if got := tc.r.Overlaps(base); got != tc.want {
				t.Fatalf("Overlaps is not symmetric")
			}
		})
	}
}

func TestNewDateRangeValidation(t *testing.T) {
	today := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)

	r, err := NewDateRange("2026-06-01", "2026-06-04", today)
	if err != nil {
		t.Fatalf("same-day check-in should be allowed: %v", err)
	}
	if r.Nights() != 3 {
		t.Fatalf("expected 3 nights, got %d", r.Nights())
	}

	tests := []struct {
		name     string
		in, out  string
		expected error
	}{
		{"reversed", "2026-06-05", "2026-06-03", ErrInvalidDates},
		{"zero nights", "2026-06-05", "2026-06-05", ErrInvalidDates},
		{"garbage", "soon", "2026-06-05", ErrInvalidDates},
		{"past", "2026-05-31", "2026-06-02", ErrCheckInPast},
		{"too long", "2026-06-02", "2026-08-02", ErrStayTooLong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDateRange(tc.in, tc.out, today); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestNewDateRangeAcceptsLocalMidnightTimestamps(t *testing.T) {
	now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)

	// Today's stay chosen in a UTC+1 browser and serialized with toISOString.
	r, err := NewDateRange("2026-06-09T23:00:00.000Z", "2026-06-10T23:00:00.000Z", now)
	if err != nil {
		t.Fatalf("expected stay starting today to be accepted: %v", err)
	}
	if r.Nights() != 1 {
		t.Fatalf("expected 1 night, got %d", r.Nights())
	}

	if _, err := NewDateRange("2026-06-08T23:00:00.000Z", "2026-06-10T23:00:00.000Z", now); !errors.Is(err, ErrCheckInPast) {
		t.Fatalf("expected ErrCheckInPast two days back, got %v", err)
	}
	if _, err := NewDateRange("2026-06-09", "2026-06-11", now); !errors.Is(err, ErrCheckInPast) {
		t.Fatalf("expected ErrCheckInPast for a plain past date, got %v", err)
	}
}

func TestTotalPrice(t *testing.T) {
	if got := TotalPrice(3, 850); got != 2550 {
		t.Fatalf("expected 2550, got %v", got)
	}
	if got := TotalPrice(2, 99.99); got != 199.98 {
		t.Fatalf("expected 199.98, got %v", got)
	}
}
