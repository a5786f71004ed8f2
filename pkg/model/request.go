package model

// ValuationRequest is the normalized JSON body posted to /predict. Field names
// follow the prediction service contract; booleans travel as 0 or 1.
type ValuationRequest struct {
	ListingType  ListingType  `json:"Listing_Type"`
	City         City         `json:"City"`
	Neighborhood string       `json:"Neighborhood"`
	PropertyType PropertyType `json:"Property_Type"`
	Bedrooms     int          `json:"Bedrooms"`
	Bathrooms    int          `json:"Bathrooms"`
	SizeM2       float64      `json:"Size_m2"`
	HasPool      int          `json:"Has_Pool"`
	HasGarden    int          `json:"Has_Garden"`
	IsFurnished  int          `json:"Is_Furnished"`
	Latitude     float64      `json:"Latitude"`
	Longitude    float64      `json:"Longitude"`
}

// Flag converts a boolean into the 0|1 integer used on the wire.
func Flag(v bool) int {
	if v {
		return 1
	}
	return 0
}
