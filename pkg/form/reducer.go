package form

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
)

// Reduce applies ev to current and returns the next state. On error the
// returned state is current, unchanged.
//
// Errors are *model.InvalidFieldError for unknown fields and
// *model.ValidationError for values outside the field domain. Edits to a
// field the current property type excludes are accepted as no-ops.
func Reduce(current model.PropertyFeatures, ev Event) (model.PropertyFeatures, error) {
	def, ok := schema.Lookup(ev.Field)
	if !ok {
		return current, &model.InvalidFieldError{Field: ev.Field}
	}
	if !def.AppliesTo(current.PropertyType) {
		return current, nil
	}

	switch ev.Op {
	case OpToggle:
		return toggle(current, def)
	case OpSet, "":
		return set(current, def, ev.Value)
	default:
		return current, fmt.Errorf("form: unsupported op %q", ev.Op)
	}
}

// Apply folds events over current, stopping at the first error. It returns the
// last valid state together with that error.
func Apply(current model.PropertyFeatures, events ...Event) (model.PropertyFeatures, error) {
	next := current
	for _, ev := range events {
		var err error
		next, err = Reduce(next, ev)
		if err != nil {
			return next, err
		}
	}
	return next, nil
}

func toggle(f model.PropertyFeatures, def schema.Field) (model.PropertyFeatures, error) {
	if def.Kind != schema.KindBoolean {
		return f, invalid(def.Name, nil, "only boolean fields can be toggled")
	}
	switch def.Name {
	case schema.FieldHasPool:
		f.HasPool = !f.HasPool
	case schema.FieldHasGarden:
		f.HasGarden = !f.HasGarden
	case schema.FieldIsFurnished:
		f.IsFurnished = !f.IsFurnished
	}
	return f, nil
}

func set(current model.PropertyFeatures, def schema.Field, value any) (model.PropertyFeatures, error) {
	next := current
	switch def.Name {
	case schema.FieldListingType:
		raw, ok := text(value)
		if !ok {
			return current, invalid(def.Name, value, "not a listing type")
		}
		lt, err := model.ParseListingType(raw)
		if err != nil {
			return current, invalid(def.Name, value, "must be one of "+strings.Join(def.Enum, ", "))
		}
		next.ListingType = lt

	case schema.FieldCity:
		raw, ok := text(value)
		if !ok {
			return current, invalid(def.Name, value, "not a city")
		}
		city, err := model.ParseCity(raw)
		if err != nil {
			return current, invalid(def.Name, value, "must be one of "+strings.Join(def.Enum, ", "))
		}
		return changeCity(current, city)

	case schema.FieldNeighborhood:
		raw, ok := text(value)
		if !ok {
			return current, invalid(def.Name, value, "not text")
		}
		next.Neighborhood = raw

	case schema.FieldPropertyType:
		raw, ok := text(value)
		if !ok {
			return current, invalid(def.Name, value, "not a property type")
		}
		pt, err := model.ParsePropertyType(raw)
		if err != nil {
			return current, invalid(def.Name, value, "must be one of "+strings.Join(def.Enum, ", "))
		}
		next.PropertyType = pt
		next = resetInapplicable(next)

	case schema.FieldBedrooms, schema.FieldBathrooms:
		n, err := integer(def, value)
		if err != nil {
			return current, err
		}
		if def.Name == schema.FieldBedrooms {
			next.Bedrooms = n
		} else {
			next.Bathrooms = n
		}

	case schema.FieldSizeM2:
		n, err := number(def, value)
		if err != nil {
			return current, err
		}
		next.SizeM2 = n

	case schema.FieldHasPool, schema.FieldHasGarden, schema.FieldIsFurnished:
		b, err := boolean(def, value)
		if err != nil {
			return current, err
		}
		switch def.Name {
		case schema.FieldHasPool:
			next.HasPool = b
		case schema.FieldHasGarden:
			next.HasGarden = b
		default:
			next.IsFurnished = b
		}

	case schema.FieldLatitude, schema.FieldLongitude:
		n, err := number(def, value)
		if err != nil {
			return current, err
		}
		if def.Name == schema.FieldLatitude {
			next.Latitude = n
		} else {
			next.Longitude = n
		}
		next.CoordinatesOverridden = true
	}
	return next, nil
}

// changeCity moves the form to city. Coordinates follow the city centre unless
// they were edited directly since the last city change; the override is
// consumed either way.
func changeCity(current model.PropertyFeatures, city model.City) (model.PropertyFeatures, error) {
	if city == current.City {
		return current, nil
	}
	next := current
	next.City = city
	if current.CoordinatesOverridden {
		next.CoordinatesOverridden = false
		return next, nil
	}
	centre, err := schema.DefaultsFor(city)
	if err != nil {
		return current, invalid(schema.FieldCity, city, err.Error())
	}
	next.Latitude = centre.Latitude
	next.Longitude = centre.Longitude
	return next, nil
}

// resetInapplicable zeroes every field the current property type excludes.
func resetInapplicable(f model.PropertyFeatures) model.PropertyFeatures {
	for _, def := range schema.Inapplicable(f.PropertyType) {
		f = Zero(f, def.Name)
	}
	return f
}

// Zero resets one field to its zero value.
func Zero(f model.PropertyFeatures, field string) model.PropertyFeatures {
	switch field {
	case schema.FieldBedrooms:
		f.Bedrooms = 0
	case schema.FieldBathrooms:
		f.Bathrooms = 0
	case schema.FieldHasPool:
		f.HasPool = false
	case schema.FieldHasGarden:
		f.HasGarden = false
	case schema.FieldIsFurnished:
		f.IsFurnished = false
	case schema.FieldSizeM2:
		f.SizeM2 = 0
	case schema.FieldNeighborhood:
		f.Neighborhood = ""
	}
	return f
}

// Values exposes f keyed by canonical field name, the shape visibility rules
// and templates read.
func Values(f model.PropertyFeatures) map[string]any {
	return map[string]any{
		schema.FieldListingType:  string(f.ListingType),
		schema.FieldCity:         string(f.City),
		schema.FieldNeighborhood: f.Neighborhood,
		schema.FieldPropertyType: string(f.PropertyType),
		schema.FieldBedrooms:     f.Bedrooms,
		schema.FieldBathrooms:    f.Bathrooms,
		schema.FieldSizeM2:       f.SizeM2,
		schema.FieldHasPool:      f.HasPool,
		schema.FieldHasGarden:    f.HasGarden,
		schema.FieldIsFurnished:  f.IsFurnished,
		schema.FieldLatitude:     f.Latitude,
		schema.FieldLongitude:    f.Longitude,
	}
}
