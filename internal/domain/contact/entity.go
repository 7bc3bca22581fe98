package contact

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a message sent through the website contact form
type Submission struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}
