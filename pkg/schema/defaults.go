package schema

import "github.com/goliatone/go-valuation/pkg/model"

// Default form values.
const (
	DefaultCity         = model.Casablanca
	DefaultNeighborhood = "Maarif"
	DefaultPropertyType = model.Apartment
	DefaultBedrooms     = 2
	DefaultBathrooms    = 1
	DefaultSizeM2       = 80
)

// DefaultFeatures returns the initial state of a valuation form. An empty
// listingType falls back to Buy.
func DefaultFeatures(listingType model.ListingType) model.PropertyFeatures {
	if listingType == "" {
		listingType = model.ListingBuy
	}
	centre, _ := DefaultsFor(DefaultCity)
	return model.PropertyFeatures{
		ListingType:  listingType,
		City:         DefaultCity,
		Neighborhood: DefaultNeighborhood,
		PropertyType: DefaultPropertyType,
		Bedrooms:     DefaultBedrooms,
		Bathrooms:    DefaultBathrooms,
		SizeM2:       DefaultSizeM2,
		Latitude:     centre.Latitude,
		Longitude:    centre.Longitude,
	}
}
