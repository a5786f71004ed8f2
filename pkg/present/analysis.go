package present

import (
	"sort"

	"github.com/goliatone/go-valuation/pkg/client"
)

// CityRow is one line of the per-city price table.
type CityRow struct {
	City string `json:"city"`
	Rent string `json:"rent"`
	Buy  string `json:"buy"`
}

// CountRow is one slice of the property type breakdown.
type CountRow struct {
	Type  string  `json:"type"`
	Count string  `json:"count"`
	Share float64 `json:"share"`
}

// AnalysisView is the formatted market analysis page.
type AnalysisView struct {
	TotalLabel    string     `json:"total_label"`
	TotalListings string     `json:"total_listings"`
	RentLabel     string     `json:"rent_label"`
	BuyLabel      string     `json:"buy_label"`
	CategoryLabel string     `json:"category_label"`
	Cities        []CityRow  `json:"cities"`
	PropertyTypes []CountRow `json:"property_types"`
}

// Analysis formats market statistics. Cities sort by name, property types by
// descending count then name.
func (p *Presenter) Analysis(a client.MarketAnalysis) AnalysisView {
	view := AnalysisView{
		TotalLabel:    p.translate("analysis.total"),
		TotalListings: p.Integer(a.TotalListings),
		RentLabel:     p.translate("analysis.rent"),
		BuyLabel:      p.translate("analysis.buy"),
		CategoryLabel: p.translate("analysis.category"),
	}

	cities := make([]string, 0, len(a.AveragePrices))
	for city := range a.AveragePrices {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	for _, city := range cities {
		prices := a.AveragePrices[city]
		view.Cities = append(view.Cities, CityRow{
			City: city,
			Rent: p.Money(prices.Rent, ""),
			Buy:  p.Money(prices.Buy, ""),
		})
	}

	types := make([]string, 0, len(a.PropertyCounts))
	total := 0
	for name, n := range a.PropertyCounts {
		types = append(types, name)
		total += n
	}
	sort.Slice(types, func(i, j int) bool {
		ci, cj := a.PropertyCounts[types[i]], a.PropertyCounts[types[j]]
		if ci != cj {
			return ci > cj
		}
		return types[i] < types[j]
	})
	for _, name := range types {
		row := CountRow{Type: name, Count: p.Integer(a.PropertyCounts[name])}
		if total > 0 {
			row.Share = float64(a.PropertyCounts[name]) / float64(total)
		}
		view.PropertyTypes = append(view.PropertyTypes, row)
	}
	return view
}
