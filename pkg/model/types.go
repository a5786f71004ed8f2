package model

import (
	"fmt"
	"strings"

	"github.com/mmcloughlin/geohash"
)

// ListingType selects the price semantics of a valuation: a monthly rent or a
// one-time market value.
type ListingType string

const (
	ListingRent ListingType = "Rent"
	ListingBuy  ListingType = "Buy"
)

// ListingTypes lists the supported listing types in display order.
func ListingTypes() []ListingType {
	return []ListingType{ListingBuy, ListingRent}
}

// ParseListingType matches raw case-insensitively and returns the canonical value.
func ParseListingType(raw string) (ListingType, error) {
	for _, lt := range ListingTypes() {
		if strings.EqualFold(strings.TrimSpace(raw), string(lt)) {
			return lt, nil
		}
	}
	return "", fmt.Errorf("model: unknown listing type %q", raw)
}

// City is one of the markets the valuation model was trained on.
type City string

const (
	Casablanca City = "Casablanca"
	Marrakech  City = "Marrakech"
	Tangier    City = "Tangier"
	Rabat      City = "Rabat"
)

// Cities lists the supported cities in the order forms present them.
func Cities() []City {
	return []City{Casablanca, Marrakech, Tangier, Rabat}
}

// ParseCity matches raw case-insensitively and returns the canonical value.
func ParseCity(raw string) (City, error) {
	for _, c := range Cities() {
		if strings.EqualFold(strings.TrimSpace(raw), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("model: unknown city %q", raw)
}

// PropertyType is the kind of property being valued.
type PropertyType string

const (
	Apartment PropertyType = "Apartment"
	Villa     PropertyType = "Villa"
	Riad      PropertyType = "Riad"
	Studio    PropertyType = "Studio"
	Land      PropertyType = "Land"
)

// PropertyTypes lists the supported property types in display order.
func PropertyTypes() []PropertyType {
	return []PropertyType{Apartment, Villa, Riad, Studio, Land}
}

// ParsePropertyType matches raw case-insensitively and returns the canonical value.
func ParsePropertyType(raw string) (PropertyType, error) {
	for _, pt := range PropertyTypes() {
		if strings.EqualFold(strings.TrimSpace(raw), string(pt)) {
			return pt, nil
		}
	}
	return "", fmt.Errorf("model: unknown property type %q", raw)
}

// Coordinates is a WGS 84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Geohash encodes the point with the requested number of characters. Values
// outside 1..12 fall back to 7, roughly a city block.
func (c Coordinates) Geohash(precision uint) string {
	if precision == 0 || precision > 12 {
		precision = 7
	}
	return geohash.EncodeWithPrecision(c.Latitude, c.Longitude, precision)
}
