package client

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/goliatone/go-valuation/pkg/contract"
)

// PaymentRequest is the body of POST /payment/process.
type PaymentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
	UserID   int     `json:"user_id"`
}

// PaymentReceipt is whatever the service echoes back. Any 2xx is accepted.
type PaymentReceipt struct {
	Status        string `json:"status,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// ProcessPayment submits a payment. Currency defaults to the client currency
// and Method to "card".
func (c *Client) ProcessPayment(ctx context.Context, req PaymentRequest) (PaymentReceipt, error) {
	if strings.TrimSpace(req.Currency) == "" {
		req.Currency = c.opts.Currency
	}
	if strings.TrimSpace(req.Method) == "" {
		req.Method = "card"
	}
	resp, failure := c.do(ctx, contract.OpProcessPayment, req)
	if failure != nil {
		return PaymentReceipt{}, failure
	}
	if !resp.ok() {
		return PaymentReceipt{}, serverFailure(resp)
	}
	var receipt PaymentReceipt
	if failure := c.decode(contract.OpProcessPayment, resp, nil); failure != nil {
		return PaymentReceipt{}, failure
	}
	// The receipt shape is not part of the contract.
	_ = json.Unmarshal(resp.body, &receipt)
	if receipt.Status == "" {
		receipt.Status = "accepted"
	}
	return receipt, nil
}
