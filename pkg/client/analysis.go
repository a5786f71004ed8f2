package client

import (
	"context"

	"github.com/goliatone/go-valuation/pkg/contract"
)

// CityPrices holds the average rent and sale price of one city.
type CityPrices struct {
	Rent float64 `json:"Rent"`
	Buy  float64 `json:"Buy"`
}

// MarketAnalysis is the aggregate returned by GET /analysis.
type MarketAnalysis struct {
	AveragePrices  map[string]CityPrices `json:"average_prices"`
	PropertyCounts map[string]int        `json:"property_counts"`
	TotalListings  int                   `json:"total_listings"`
}

// Analysis fetches market statistics.
func (c *Client) Analysis(ctx context.Context) (MarketAnalysis, error) {
	resp, failure := c.do(ctx, contract.OpAnalysis, nil)
	if failure != nil {
		return MarketAnalysis{}, failure
	}
	if !resp.ok() {
		return MarketAnalysis{}, serverFailure(resp)
	}
	var out MarketAnalysis
	if failure := c.decode(contract.OpAnalysis, resp, &out); failure != nil {
		return MarketAnalysis{}, failure
	}
	return out, nil
}
