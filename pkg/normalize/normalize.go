// Package normalize derives the immutable wire request from form state.
package normalize

import (
	"strings"

	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
)

// Normalize maps f to a ValuationRequest. Fields the property type excludes are
// zeroed again here, whatever the reducer left behind. A blank neighborhood or
// a non-positive size fails with *model.IncompleteFeaturesError.
func Normalize(f model.PropertyFeatures) (model.ValuationRequest, error) {
	for _, def := range schema.Inapplicable(f.PropertyType) {
		f = form.Zero(f, def.Name)
	}

	var missing []string
	if strings.TrimSpace(f.Neighborhood) == "" {
		missing = append(missing, schema.FieldNeighborhood)
	}
	if !(f.SizeM2 > 0) {
		missing = append(missing, schema.FieldSizeM2)
	}
	if len(missing) > 0 {
		return model.ValuationRequest{}, &model.IncompleteFeaturesError{Missing: missing}
	}

	return model.ValuationRequest{
		ListingType:  f.ListingType,
		City:         f.City,
		Neighborhood: strings.TrimSpace(f.Neighborhood),
		PropertyType: f.PropertyType,
		Bedrooms:     f.Bedrooms,
		Bathrooms:    f.Bathrooms,
		SizeM2:       f.SizeM2,
		HasPool:      model.Flag(f.HasPool),
		HasGarden:    model.Flag(f.HasGarden),
		IsFurnished:  model.Flag(f.IsFurnished),
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
	}, nil
}

// Features is the inverse of Normalize. CoordinatesOverridden is set when the
// request coordinates differ from the city centre.
func Features(req model.ValuationRequest) model.PropertyFeatures {
	f := model.PropertyFeatures{
		ListingType:  req.ListingType,
		City:         req.City,
		Neighborhood: req.Neighborhood,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		SizeM2:       req.SizeM2,
		HasPool:      req.HasPool != 0,
		HasGarden:    req.HasGarden != 0,
		IsFurnished:  req.IsFurnished != 0,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if centre, err := schema.DefaultsFor(req.City); err == nil {
		f.CoordinatesOverridden = centre != f.Coordinates()
	}
	return f
}
