package contact

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository defines contact submission data access
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	List(ctx context.Context, limit, offset int) ([]*Submission, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates contact repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Submission) error {
	query := `
		INSERT INTO contact_submissions (id, name, email, phone, message, created_at)
		VALUES (:id, :name, :email, :phone, :message, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]*Submission, error) {
	var out []*Submission
	query := `
		SELECT id, name, email, phone, message, created_at
		FROM contact_submissions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &out, query, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}
