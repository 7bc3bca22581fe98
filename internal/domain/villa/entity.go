package villa

import (
	"time"

	"github.com/lib/pq"
)

// Villa is a bookable unit of accommodation
type Villa struct {
	ID            string         `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Description   string         `db:"description" json:"description"`
	MaxGuests     int            `db:"max_guests" json:"max_guests"`
	PricePerNight float64        `db:"price_per_night" json:"price_per_night"`
	Amenities     pq.StringArray `db:"amenities" json:"amenities"`
	ImageURL      string         `db:"image_url" json:"image_url"`
	SortOrder     int            `db:"sort_order" json:"sort_order"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Accommodates reports whether the villa can host the given party size
func (v *Villa) Accommodates(guests int) bool {
	return guests >= 1 && guests <= v.MaxGuests
}
