package client

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/model"
)

type prediction struct {
	PredictedPrice *float64 `json:"predicted_price"`
	Currency       string   `json:"currency"`
}

// Submit posts req to /predict and returns model.Success or *model.Failure.
// It blocks until the call resolves; use Go to run it in the background.
func (c *Client) Submit(ctx context.Context, req model.ValuationRequest) model.Result {
	resp, failure := c.do(ctx, contract.OpPredict, req)
	if failure != nil {
		return failure
	}
	if !resp.ok() {
		failure := serverFailure(resp)
		c.opts.Logger.Warn("valuation rejected",
			slog.String("component", "valuation_client"),
			slog.Int("status", failure.StatusCode),
			slog.String("detail", failure.Message),
		)
		return failure
	}

	var body prediction
	if failure := c.decode(contract.OpPredict, resp, &body); failure != nil {
		return failure
	}
	if body.PredictedPrice == nil {
		return malformed(resp, errors.New("predicted_price is missing"))
	}
	price := *body.PredictedPrice
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return malformed(resp, errors.New("predicted_price is not finite"))
	}

	currency := strings.TrimSpace(body.Currency)
	if currency == "" {
		currency = c.opts.Currency
	}
	return model.Success{PredictedPrice: price, Currency: currency}
}

// Go runs Submit on its own goroutine. The channel receives exactly one
// result and is then closed.
func (c *Client) Go(ctx context.Context, req model.ValuationRequest) <-chan model.Result {
	out := make(chan model.Result, 1)
	go func() {
		defer close(out)
		out <- c.Submit(ctx, req)
	}()
	return out
}
