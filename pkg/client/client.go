package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/model"
)

// RequestIDHeader carries a fresh id per call for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client is safe for concurrent use.
type Client struct {
	opts Options
}

// New constructs a Client.
func New(options ...Option) *Client {
	return &Client{opts: NewOptions(options...)}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration { return c.opts.Timeout }

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.opts.Token = token
	return &clone
}

var fallbackEndpoints = map[string]contract.Endpoint{
	contract.OpPredict:        {ID: contract.OpPredict, Method: http.MethodPost, Path: "/predict"},
	contract.OpLogin:          {ID: contract.OpLogin, Method: http.MethodPost, Path: "/auth/login"},
	contract.OpRegister:       {ID: contract.OpRegister, Method: http.MethodPost, Path: "/auth/register"},
	contract.OpAnalysis:       {ID: contract.OpAnalysis, Method: http.MethodGet, Path: "/analysis"},
	contract.OpProcessPayment: {ID: contract.OpProcessPayment, Method: http.MethodPost, Path: "/payment/process"},
}

func (c *Client) endpoint(op string) contract.Endpoint {
	if c.opts.Contract != nil {
		if ep, err := c.opts.Contract.Endpoint(op); err == nil {
			return ep
		}
	}
	return fallbackEndpoints[op]
}

// response is a fully read HTTP reply.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (r response) ok() bool {
	return r.status >= http.StatusOK && r.status < http.StatusMultipleChoices
}

// do performs one call of operation op. Transport problems come back as a
// *model.Failure classified as Timeout, Canceled or NetworkError.
func (c *Client) do(ctx context.Context, op string, payload any) (response, *model.Failure) {
	ep := c.endpoint(op)
	logger := c.opts.Logger.With(
		slog.String("component", "valuation_client"),
		slog.String("method", op),
	)

	if err := ctx.Err(); err != nil {
		return response{}, classify(ctx, err)
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return response{}, model.NewFailure(model.NetworkError, "could not encode request", err)
		}
		body = bytes.NewReader(raw)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, ep.Method, c.opts.BaseURL+ep.Path, body)
	if err != nil {
		return response{}, model.NewFailure(model.NetworkError, "could not build request", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	logger = logger.With(slog.String("request_id", requestID))
	start := time.Now()
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		failure := classify(callCtx, err)
		logger.Warn("valuation api call failed",
			slog.String("kind", string(failure.Kind)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return response{}, failure
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		failure := classify(callCtx, err)
		logger.Warn("valuation api body read failed", slog.Int("status", resp.StatusCode), slog.Any("error", err))
		return response{}, failure
	}

	logger.Debug("valuation api call completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)
	return response{status: resp.StatusCode, header: resp.Header, body: raw}, nil
}

// classify maps a transport error onto a failure kind. ctx is the context the
// call ran under.
func classify(ctx context.Context, err error) *model.Failure {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return model.NewFailure(model.Timeout, "the valuation service did not answer in time", err)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return model.NewFailure(model.Canceled, "the valuation request was canceled", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return model.NewFailure(model.Timeout, "the valuation service did not answer in time", err)
	default:
		return model.NewFailure(model.NetworkError, "the valuation service could not be reached", err)
	}
}

// serverFailure builds the ServerError for a non-2xx reply.
func serverFailure(resp response) *model.Failure {
	failure := model.NewFailure(model.ServerError, extractDetail(resp.status, resp.header, resp.body), nil)
	failure.StatusCode = resp.status
	return failure
}

// decode validates a 2xx body against the contract and decodes it into dst.
func (c *Client) decode(op string, resp response, dst any) *model.Failure {
	if c.opts.Contract != nil {
		if err := c.opts.Contract.ValidateResponse(op, resp.status, resp.body); err != nil {
			return malformed(resp, err)
		}
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, dst); err != nil {
		return malformed(resp, err)
	}
	return nil
}

func malformed(resp response, err error) *model.Failure {
	failure := model.NewFailure(model.MalformedResponse, fmt.Sprintf("unexpected response body: %v", err), err)
	failure.StatusCode = resp.status
	return failure
}
