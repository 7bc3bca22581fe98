package contact

import (
	"time"
)

// CreateContactRequest for POST /contact
type CreateContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// SubmissionResponse is the representation of a submission
type SubmissionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts entity to response
func ToResponse(s *Submission) *SubmissionResponse {
	resp := &SubmissionResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		Email:     s.Email,
		Message:   s.Message,
		CreatedAt: s.CreatedAt,
	}
	if s.Phone != "" {
		phone := s.Phone
		resp.Phone = &phone
	}
	return resp
}
