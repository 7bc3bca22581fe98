package villa

// VillaResponse is the public representation of a villa
type VillaResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	MaxGuests     int      `json:"max_guests"`
	PricePerNight float64  `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
	ImageURL      string   `json:"image_url"`
}

// ToResponse converts entity to response
func ToResponse(v *Villa) *VillaResponse {
	amenities := []string(v.Amenities)
	if amenities == nil {
		amenities = []string{}
	}
	return &VillaResponse{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		MaxGuests:     v.MaxGuests,
		PricePerNight: v.PricePerNight,
		Amenities:     amenities,
		ImageURL:      v.ImageURL,
	}
}

// ToResponseList converts a slice of entities
func ToResponseList(villas []*Villa) []*VillaResponse {
	out := make([]*VillaResponse, len(villas))
	for i, v := range villas {
		out[i] = ToResponse(v)
	}
	return out
}

// CreateVillaRequest for POST /admin/villas
type CreateVillaRequest struct {
	ID            string   `json:"id" validate:"required,slug,max=64"`
	Name          string   `json:"name" validate:"required,min=2,max=120"`
	Description   string   `json:"description" validate:"max=2000"`
	MaxGuests     int      `json:"max_guests" validate:"required,gte=1,lte=20"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gt=0"`
	Amenities     []string `json:"amenities" validate:"max=20,dive,min=1,max=60"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	SortOrder     int      `json:"sort_order"`
}

// UpdateVillaRequest for PUT /admin/villas/{id}. Nil fields are left unchanged.
type UpdateVillaRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=2,max=120"`
	Description   *string   `json:"description" validate:"omitempty,max=2000"`
	MaxGuests     *int      `json:"max_guests" validate:"omitempty,gte=1,lte=20"`
	PricePerNight *float64  `json:"price_per_night" validate:"omitempty,gt=0"`
	Amenities     *[]string `json:"amenities" validate:"omitempty,max=20"`
	ImageURL      *string   `json:"image_url" validate:"omitempty,url"`
	SortOrder     *int      `json:"sort_order"`
}
