package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-valuation/pkg/model"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// ErrUnknownCity is returned for cities missing from the catalogue.
var ErrUnknownCity = errors.New("schema: unknown city")

// ErrIncompleteCatalogue is returned by LoadCatalogue when a supported city
// has no entry.
var ErrIncompleteCatalogue = errors.New("schema: incomplete catalogue")

// CityEntry is one city in the catalogue.
type CityEntry struct {
	Name          model.City        `yaml:"name" json:"city"`
	Centre        model.Coordinates `yaml:"centre" json:"centre"`
	Neighborhoods []string          `yaml:"neighborhoods" json:"neighborhoods"`
}

// Catalogue holds the per-city data the form needs.
type Catalogue struct {
	Cities []CityEntry `yaml:"cities" json:"cities"`
}

// LoadCatalogue parses and validates a YAML catalogue. Every supported city
// must appear exactly once, with in-range coordinates.
func LoadCatalogue(raw []byte) (*Catalogue, error) {
	if len(raw) == 0 {
		return nil, errors.New("schema: catalogue document is empty")
	}
	var cat Catalogue
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("schema: decode catalogue: %w", err)
	}
	seen := make(map[model.City]bool, len(cat.Cities))
	for i, entry := range cat.Cities {
		city, err := model.ParseCity(string(entry.Name))
		if err != nil {
			return nil, fmt.Errorf("schema: catalogue entry %d: %w", i, err)
		}
		if seen[city] {
			return nil, fmt.Errorf("schema: catalogue lists %s twice", city)
		}
		if !validCoordinates(entry.Centre) {
			return nil, fmt.Errorf("schema: catalogue entry %s has invalid centre %v", city, entry.Centre)
		}
		seen[city] = true
		cat.Cities[i].Name = city
	}
	var missing []string
	for _, city := range model.Cities() {
		if !seen[city] {
			missing = append(missing, string(city))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteCatalogue, strings.Join(missing, ", "))
	}
	return &cat, nil
}

func validCoordinates(c model.Coordinates) bool {
	lat, lon := c.Latitude, c.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// DefaultCatalogue returns the embedded catalogue, parsed once.
func DefaultCatalogue() *Catalogue {
	defaultOnce.Do(func() {
		cat, err := LoadCatalogue(catalogueYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = cat
	})
	return defaultCat
}

// City returns the entry for city.
func (c *Catalogue) City(city model.City) (CityEntry, bool) {
	for _, entry := range c.Cities {
		if entry.Name == city {
			return entry, true
		}
	}
	return CityEntry{}, false
}

// DefaultsFor returns the representative coordinates of city.
func (c *Catalogue) DefaultsFor(city model.City) (model.Coordinates, error) {
	entry, ok := c.City(city)
	if !ok {
		return model.Coordinates{}, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return entry.Centre, nil
}

// DefaultsFor returns the representative coordinates of city from the
// embedded catalogue.
func DefaultsFor(city model.City) (model.Coordinates, error) {
	return DefaultCatalogue().DefaultsFor(city)
}

// Neighborhoods returns the suggested neighborhoods for city. The form field
// stays free text; these only seed pickers.
func Neighborhoods(city model.City) []string {
	entry, ok := DefaultCatalogue().City(city)
	if !ok {
		return nil
	}
	return append([]string(nil), entry.Neighborhoods...)
}
