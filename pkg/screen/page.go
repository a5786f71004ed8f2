package screen

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
)

// Page is a thin binding over the shared form engine: it picks the default
// listing type and an optional preset applied on mount.
type Page struct {
	Name        string
	Route       auth.Route
	ListingType model.ListingType
	Preset      []form.Event
}

// PredictPage is the standalone prediction form.
var PredictPage = Page{
	Name:        "predict",
	Route:       auth.RoutePredict,
	ListingType: model.ListingBuy,
}

// DashboardPage is the quick estimate widget on the dashboard.
var DashboardPage = Page{
	Name:        "dashboard",
	Route:       auth.RouteDashboard,
	ListingType: model.ListingBuy,
	Preset: []form.Event{
		form.Set(schema.FieldNeighborhood, "Maârif"),
		form.Set(schema.FieldBedrooms, 3),
		form.Set(schema.FieldBathrooms, 2),
		form.Set(schema.FieldSizeM2, 120),
		form.Set(schema.FieldIsFurnished, true),
		form.Set(schema.FieldLatitude, 33.57),
		form.Set(schema.FieldLongitude, -7.58),
	},
}

// AnalysisPage is the estimate form next to the market analysis charts.
var AnalysisPage = Page{
	Name:        "analysis",
	Route:       auth.RouteAnalysis,
	ListingType: model.ListingBuy,
}

// Pages lists the built-in pages.
func Pages() []Page {
	return []Page{PredictPage, DashboardPage, AnalysisPage}
}

// LookupPage finds a built-in page by name, case-insensitively.
func LookupPage(name string) (Page, bool) {
	for _, p := range Pages() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Page{}, false
}

// Features returns the initial form state of the page.
func (p Page) Features() (model.PropertyFeatures, error) {
	f, err := form.Apply(schema.DefaultFeatures(p.ListingType), p.Preset...)
	if err != nil {
		return f, fmt.Errorf("screen: page %s preset: %w", p.Name, err)
	}
	return f, nil
}
