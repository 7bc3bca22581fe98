package villa

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/database"
)

// Repository defines villa data access
type Repository interface {
	List(ctx context.Context) ([]*Villa, error)
	GetByID(ctx context.Context, id string) (*Villa, error)
	Create(ctx context.Context, v *Villa) error
	Update(ctx context.Context, v *Villa) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates villa repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const villaColumns = `id, name, description, max_guests, price_per_night, amenities, image_url, sort_order, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]*Villa, error) {
	var villas []*Villa
	err := r.db.SelectContext(ctx, &villas, `SELECT `+villaColumns+` FROM villas ORDER BY sort_order, id`)
	return villas, err
}

// GetByID returns nil, nil when the villa does not exist
func (r *repository) GetByID(ctx context.Context, id string) (*Villa, error) {
	var v Villa
	err := r.db.GetContext(ctx, &v, `SELECT `+villaColumns+` FROM villas WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) Create(ctx context.Context, v *Villa) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO villas (id, name, description, max_guests, price_per_night, amenities, image_url, sort_order, created_at, updated_at)
		VALUES (:id, :name, :description, :max_guests, :price_per_night, :amenities, :image_url, :sort_order, :created_at, :updated_at)
	`, v)
	if database.IsUniqueViolation(err) {
		return ErrVillaExists
	}
	return err
}

func (r *repository) Update(ctx context.Context, v *Villa) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE villas SET
			name = :name,
			description = :description,
			max_guests = :max_guests,
			price_per_night = :price_per_night,
			amenities = :amenities,
			image_url = :image_url,
			sort_order = :sort_order,
			updated_at = :updated_at
		WHERE id = :id
	`, v)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVillaNotFound
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM villas`)
	return n, err
}
