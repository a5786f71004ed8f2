package schema

import (
	"strings"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/visibility"
	"github.com/goliatone/go-valuation/pkg/visibility/expr"
)

// Kind is the value domain of a field.
type Kind string

const (
	KindEnum       Kind = "enum"
	KindText       Kind = "text"
	KindInteger    Kind = "integer"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindCoordinate Kind = "coordinate"
)

// Canonical field names.
const (
	FieldListingType  = "listingType"
	FieldCity         = "city"
	FieldNeighborhood = "neighborhood"
	FieldPropertyType = "propertyType"
	FieldBedrooms     = "bedrooms"
	FieldBathrooms    = "bathrooms"
	FieldSizeM2       = "sizeM2"
	FieldHasPool      = "hasPool"
	FieldHasGarden    = "hasGarden"
	FieldIsFurnished  = "isFurnished"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
)

// exceptLand is the rule for fields that have no meaning on a bare plot.
const exceptLand = `propertyType != "Land"`

// Field describes one attribute of PropertyFeatures.
type Field struct {
	Name  string   `json:"name"`
	Wire  string   `json:"wire"`
	Kind  Kind     `json:"kind"`
	Label string   `json:"label"`
	Enum  []string `json:"enum,omitempty"`
	// Rule is a visibility/expr expression over the form values. An empty
	// rule means the field always applies.
	Rule string `json:"rule,omitempty"`
	// Min is the inclusive lower bound for numeric kinds. Positive marks
	// fields that must be strictly greater than zero once normalised.
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Positive bool     `json:"positive,omitempty"`
	Required bool     `json:"required,omitempty"`

	rule *expr.Rule
}

// Numeric reports whether the field carries a number.
func (f Field) Numeric() bool {
	return f.Kind == KindInteger || f.Kind == KindNumber || f.Kind == KindCoordinate
}

// Conditional reports whether the field has an applicability rule.
func (f Field) Conditional() bool {
	return f.Rule != ""
}

func bound(v float64) *float64 { return &v }

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

var fields = buildFields()

func buildFields() []Field {
	out := []Field{
		{Name: FieldListingType, Wire: "Listing_Type", Kind: KindEnum, Label: "Listing type", Enum: enumOf(model.ListingTypes()), Required: true},
		{Name: FieldCity, Wire: "City", Kind: KindEnum, Label: "City", Enum: enumOf(model.Cities()), Required: true},
		{Name: FieldNeighborhood, Wire: "Neighborhood", Kind: KindText, Label: "Neighborhood", Required: true},
		{Name: FieldPropertyType, Wire: "Property_Type", Kind: KindEnum, Label: "Property type", Enum: enumOf(model.PropertyTypes()), Required: true},
		{Name: FieldBedrooms, Wire: "Bedrooms", Kind: KindInteger, Label: "Bedrooms", Rule: exceptLand, Min: bound(0)},
		{Name: FieldBathrooms, Wire: "Bathrooms", Kind: KindInteger, Label: "Bathrooms", Rule: exceptLand, Min: bound(0)},
		{Name: FieldSizeM2, Wire: "Size_m2", Kind: KindNumber, Label: "Size (m²)", Min: bound(0), Positive: true, Required: true},
		{Name: FieldHasPool, Wire: "Has_Pool", Kind: KindBoolean, Label: "Pool", Rule: exceptLand},
		{Name: FieldHasGarden, Wire: "Has_Garden", Kind: KindBoolean, Label: "Garden", Rule: exceptLand},
		{Name: FieldIsFurnished, Wire: "Is_Furnished", Kind: KindBoolean, Label: "Furnished", Rule: exceptLand},
		{Name: FieldLatitude, Wire: "Latitude", Kind: KindCoordinate, Label: "Latitude", Min: bound(-90), Max: bound(90)},
		{Name: FieldLongitude, Wire: "Longitude", Kind: KindCoordinate, Label: "Longitude", Min: bound(-180), Max: bound(180)},
	}
	for i := range out {
		out[i].rule = expr.MustCompile(out[i].Rule)
	}
	return out
}

// Fields returns the catalogue in form order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup resolves a canonical (sizeM2) or wire (Size_m2) field name. Matching
// is case-insensitive.
func Lookup(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range fields {
		if strings.EqualFold(f.Name, name) || strings.EqualFold(f.Wire, name) {
			return f, true
		}
	}
	return Field{}, false
}

// IsApplicable reports whether field applies to propertyType. Unknown fields
// are never applicable.
func IsApplicable(field string, propertyType model.PropertyType) bool {
	f, ok := Lookup(field)
	if !ok {
		return false
	}
	return f.AppliesTo(propertyType)
}

// AppliesTo evaluates the field rule for propertyType.
func (f Field) AppliesTo(propertyType model.PropertyType) bool {
	if f.rule == nil {
		return true
	}
	return f.rule.Eval(visibility.Context{
		Values: map[string]any{FieldPropertyType: string(propertyType)},
	})
}

// Applicable returns the fields that apply to propertyType, in form order.
func Applicable(propertyType model.PropertyType) []Field {
	var out []Field
	for _, f := range fields {
		if f.AppliesTo(propertyType) {
			out = append(out, f)
		}
	}
	return out
}

// Inapplicable returns the fields propertyType excludes, in form order.
func Inapplicable(propertyType model.PropertyType) []Field {
	var out []Field
	for _, f := range fields {
		if !f.AppliesTo(propertyType) {
			out = append(out, f)
		}
	}
	return out
}
