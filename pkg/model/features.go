package model

// PropertyFeatures is the mutable form state owned by a single valuation
// screen. It is only changed through pkg/form so the conditional reset rules
// are applied on every transition.
type PropertyFeatures struct {
	ListingType  ListingType  `json:"listingType"`
	City         City         `json:"city"`
	Neighborhood string       `json:"neighborhood"`
	PropertyType PropertyType `json:"propertyType"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	SizeM2       float64      `json:"sizeM2"`
	HasPool      bool         `json:"hasPool"`
	HasGarden    bool         `json:"hasGarden"`
	IsFurnished  bool         `json:"isFurnished"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`

	// CoordinatesOverridden is set by a direct latitude/longitude edit and
	// cleared by the next city change.
	CoordinatesOverridden bool `json:"coordinatesOverridden"`
}

// Coordinates returns the current latitude/longitude pair.
func (f PropertyFeatures) Coordinates() Coordinates {
	return Coordinates{Latitude: f.Latitude, Longitude: f.Longitude}
}
