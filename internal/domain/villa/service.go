package villa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/apollos-hideaway/hideaway-api/internal/pkg/imaging"
	"github.com/apollos-hideaway/hideaway-api/internal/pkg/storage"
)

// ImageProcessor renders uploaded photos into stored variants
type ImageProcessor interface {
	Process(reader io.Reader) ([]imaging.Variant, error)
}

// Service handles villa catalog logic
type Service struct {
	repo      Repository
	storage   storage.Storage
	processor ImageProcessor
	now       func() time.Time
}

// NewService creates villa service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// SetImageStorage enables admin image uploads
func (s *Service) SetImageStorage(store storage.Storage, processor ImageProcessor) {
	s.storage = store
	s.processor = processor
}

// List returns all villas in display order
func (s *Service) List(ctx context.Context) ([]*Villa, error) {
	return s.repo.List(ctx)
}

// Get returns a villa by id
func (s *Service) Get(ctx context.Context, id string) (*Villa, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVillaNotFound
	}
	return v, nil
}

// Create adds a villa to the catalog
func (s *Service) Create(ctx context.Context, req *CreateVillaRequest) (*Villa, error) {
	now := s.now().UTC()
	v := &Villa{
		ID:            req.ID,
		Name:          req.Name,
		Description:   req.Description,
		MaxGuests:     req.MaxGuests,
		PricePerNight: req.PricePerNight,
		Amenities:     req.Amenities,
		ImageURL:      req.ImageURL,
		SortOrder:     req.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, id string, req *UpdateVillaRequest) (*Villa, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		v.Name = *req.Name
	}
	if req.Description != nil {
		v.Description = *req.Description
	}
	if req.MaxGuests != nil {
		v.MaxGuests = *req.MaxGuests
	}
	if req.PricePerNight != nil {
		v.PricePerNight = *req.PricePerNight
	}
	if req.Amenities != nil {
		v.Amenities = *req.Amenities
	}
	if req.ImageURL != nil {
		v.ImageURL = *req.ImageURL
	}
	if req.SortOrder != nil {
		v.SortOrder = *req.SortOrder
	}
	v.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UploadImage processes a photo, stores its variants and points the villa
// at the hero rendition.
func (s *Service) UploadImage(ctx context.Context, id string, reader io.Reader) (*Villa, error) {
	if s.storage == nil || s.processor == nil {
		return nil, errors.New("image storage is not configured")
	}

	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	variants, err := s.processor.Process(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	token := uuid.NewString()
	var heroURL string
	for _, variant := range variants {
		key := fmt.Sprintf("villas/%s/%s-%s.jpg", v.ID, variant.Name, token)
		if err := s.storage.Put(ctx, key, bytes.NewReader(variant.Data), imaging.ContentType); err != nil {
			return nil, fmt.Errorf("failed to store %s variant: %w", variant.Name, err)
		}
		if variant.Name == imaging.VariantHero {
			heroURL = s.storage.URL(key)
		}
	}
	if heroURL == "" {
		return nil, fmt.Errorf("%w: no hero variant produced", ErrInvalidImage)
	}

	v.ImageURL = heroURL
	v.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	log.Info().Str("villa_id", v.ID).Str("image_url", heroURL).Msg("Villa image updated")
	return v, nil
}

// Seed installs the default catalog when the villas table is empty
func (s *Service) Seed(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := s.now().UTC()
	inserted := 0
	for _, v := range DefaultVillas() {
		v := v
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := s.repo.Create(ctx, &v); err != nil {
			if errors.Is(err, ErrVillaExists) {
				continue
			}
			return inserted, err
		}
		inserted++
	}

	log.Info().Int("count", inserted).Msg("Seeded villa catalog")
	return inserted, nil
}
