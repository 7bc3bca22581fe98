package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/events"
)

// Service handles contact form submissions
type Service struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

// NewService creates contact service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetPublisher sets the domain event publisher (optional)
func (s *Service) SetPublisher(p events.Publisher) {
	s.publisher = p
}

// Submit stores a submission and announces it. Notification failures are
// logged only.
func (s *Service) Submit(ctx context.Context, req *CreateContactRequest) (*Submission, error) {
	sub := &Submission{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   strings.TrimSpace(req.Message),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	log.Info().Str("submission_id", sub.ID.String()).Msg("Contact submission received")

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, events.ContactSubmitted, events.ContactPayload{
			SubmissionID: sub.ID.String(),
			Name:         sub.Name,
			Email:        sub.Email,
			Phone:        sub.Phone,
			Message:      sub.Message,
		})
		if err != nil {
			log.Error().Err(err).Str("submission_id", sub.ID.String()).Msg("Failed to publish contact submission")
		}
	}
	return sub, nil
}

// List returns submissions newest first
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Submission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}
