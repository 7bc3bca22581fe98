package villa

// defaultVillas is the catalog installed into an empty database
var defaultVillas = []Villa{
	{
		ID:            "villa-1",
		Name:          "Apollo's Sanctuary",
		Description:   "Grand neoclassical estate with marble columns, classical statues, and private reflecting pool surrounded by manicured gardens.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Private Pool", "Marble Bath", "Garden View", "Classical Statues"},
		ImageURL:      "https://images.unsplash.com/photo-1689853912773-1cf88e58629d",
	},
	{
		ID:            "villa-2",
		Name:          "Diana's Haven",
		Description:   "Elegant villa with manicured lawns, neoclassical facade, and serene garden pathways leading to the wellness complex.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Garden Pathway", "Private Terrace", "Spa Bath", "Lawn Views"},
		ImageURL:      "https://images.unsplash.com/photo-1689853910685-117066769bff",
	},
	{
		ID:            "villa-3",
		Name:          "Athena's Retreat",
		Description:   "Classical villa featuring symmetrical architecture, long tree-lined driveway, and views of the orchard.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Orchard View", "Classical Design", "Luxury Bath", "Tree-Lined Drive"},
		ImageURL:      "https://images.unsplash.com/photo-1689853910671-7683814c3fb3",
	},
	{
		ID:            "villa-4",
		Name:          "Neptune's Oasis",
		Description:   "Waterside villa with classical statue focal point, direct access to the pond and wellness facility nearby.",
		MaxGuests:     2,
		PricePerNight: 950,
		Amenities:     []string{"Pond Access", "Wellness Access", "Classical Art", "Water View"},
		ImageURL:      "https://images.unsplash.com/photo-1689853915785-53c92d8444b6",
	},
	{
		ID:            "villa-5",
		Name:          "Venus Garden Villa",
		Description:   "Romantic hideaway with grand columns, surrounded by blooming gardens and fragrant herb gardens.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Column Design", "Herb Garden", "Butterfly Garden", "Grand Entrance"},
		ImageURL:      "https://images.pexels.com/photos/7174109/pexels-photo-7174109.jpeg",
	},
	{
		ID:            "villa-6",
		Name:          "Mercury's Flight",
		Description:   "Modern luxury villa with classical touches, clean lines, and panoramic garden views.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Panoramic Views", "Modern Luxury", "Private Pool", "Contemporary Design"},
		ImageURL:      "https://images.pexels.com/photos/20768156/pexels-photo-20768156.jpeg",
	},
	{
		ID:            "villa-7",
		Name:          "Jupiter's Estate",
		Description:   "Grand villa with expansive colonnades, multiple balconies, and direct pathway to the Roman bath complex.",
		MaxGuests:     4,
		PricePerNight: 1200,
		Amenities:     []string{"Bath Access", "Colonnade", "4 Guests", "Multiple Balconies"},
		ImageURL:      "https://images.unsplash.com/photo-1696574555247-a5bc88f681ed",
	},
	{
		ID:            "villa-8",
		Name:          "Mars' Hideaway",
		Description:   "Private villa with impressive residential architecture, classical columns, and secluded garden sanctuary.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Classical Columns", "Garden Sanctuary", "Private Path", "Secluded"},
		ImageURL:      "https://images.pexels.com/photos/53610/large-home-residential-house-architecture-53610.jpeg",
	},
	{
		ID:            "villa-9",
		Name:          "Minerva's Wisdom",
		Description:   "Thoughtfully designed villa with colonnade hallway, classical architectural elements, and tranquil reflecting pool.",
		MaxGuests:     2,
		PricePerNight: 850,
		Amenities:     []string{"Colonnade Hall", "Reflecting Pool", "Classical Elements", "Quiet Zone"},
		ImageURL:      "https://images.unsplash.com/photo-1714486729607-d8408bb25b42",
	},
	{
		ID:            "villa-10",
		Name:          "Bacchus' Vineyard Villa",
		Description:   "Luxury villa with elegant interiors, surrounded by orchard trees with wine-tasting terrace and garden access.",
		MaxGuests:     2,
		PricePerNight: 950,
		Amenities:     []string{"Vineyard Views", "Wine Terrace", "Orchard Access", "Elegant Interior"},
		ImageURL:      "https://images.pexels.com/photos/6957083/pexels-photo-6957083.jpeg",
	},
}

// DefaultVillas returns a copy of the seed catalog
func DefaultVillas() []Villa {
	out := make([]Villa, len(defaultVillas))
	copy(out, defaultVillas)
	for i := range out {
		out[i].Amenities = append([]string(nil), defaultVillas[i].Amenities...)
		out[i].SortOrder = i + 1
	}
	return out
}
