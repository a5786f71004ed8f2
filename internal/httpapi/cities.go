package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
)

// pinPrecision is the geohash length of a city pin, about a kilometre.
const pinPrecision = 6

// cityResponse is what a map widget needs to move the pin when the city
// select changes: the centre the reducer will jump to and its cell.
type cityResponse struct {
	City          model.City        `json:"city"`
	Centre        model.Coordinates `json:"centre"`
	Geohash       string            `json:"geohash"`
	Neighborhoods []string          `json:"neighborhoods"`
}

func newCityResponse(entry schema.CityEntry, hoods []string) cityResponse {
	if hoods == nil {
		hoods = []string{}
	}
	return cityResponse{
		City:          entry.Name,
		Centre:        entry.Centre,
		Geohash:       entry.Centre.Geohash(pinPrecision),
		Neighborhoods: append([]string{}, hoods...),
	}
}

// matchCity keeps entry when q names the city, or narrows its neighborhoods to
// those containing q.
func matchCity(entry schema.CityEntry, q string) (cityResponse, bool) {
	if q == "" || strings.Contains(strings.ToLower(string(entry.Name)), q) {
		return newCityResponse(entry, entry.Neighborhoods), true
	}
	var hoods []string
	for _, n := range entry.Neighborhoods {
		if strings.Contains(strings.ToLower(n), q) {
			hoods = append(hoods, n)
		}
	}
	if len(hoods) == 0 {
		return cityResponse{}, false
	}
	return newCityResponse(entry, hoods), true
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	out := []cityResponse{}
	for _, entry := range schema.DefaultCatalogue().Cities {
		if resp, ok := matchCity(entry, q); ok {
			out = append(out, resp)
		}
	}
	writeJSON(w, http.StatusOK, map[string][]cityResponse{"data": out})
}

func (s *Server) handleCity(w http.ResponseWriter, r *http.Request) {
	city, err := model.ParseCity(chi.URLParam(r, "city"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", schema.ErrUnknownCity, err))
		return
	}
	entry, ok := schema.DefaultCatalogue().City(city)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", schema.ErrUnknownCity, city))
		return
	}
	writeJSON(w, http.StatusOK, newCityResponse(entry, entry.Neighborhoods))
}
