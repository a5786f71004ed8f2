package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-valuation/pkg/contract"
)

const (
	// DefaultBaseURL is where the prediction service listens in development.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds a single call when the caller does not choose one.
	DefaultTimeout = 10 * time.Second
	// DefaultCurrency labels prices when the service omits a currency.
	DefaultCurrency = "MAD"

	maxBodyBytes = 1 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	// Timeout caps each call. Zero or negative values restore DefaultTimeout.
	Timeout time.Duration
	Logger  *slog.Logger
	// Contract validates 2xx bodies. Nil skips validation.
	Contract *contract.Contract
	// Token is sent as a bearer token when set.
	Token    string
	Currency string
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithBaseURL sets the API root, e.g. http://localhost:8000.
func WithBaseURL(raw string) Option {
	return func(o *Options) {
		o.BaseURL = raw
	}
}

// WithHTTPClient injects the HTTP client used for every call.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithContract enables response validation against c.
func WithContract(c *contract.Contract) Option {
	return func(o *Options) {
		o.Contract = c
	}
}

// WithToken attaches a bearer token to every call.
func WithToken(token string) Option {
	return func(o *Options) {
		o.Token = token
	}
}

// WithCurrency overrides DefaultCurrency.
func WithCurrency(code string) Option {
	return func(o *Options) {
		o.Currency = code
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) Options {
	cfg := Options{
		BaseURL:  DefaultBaseURL,
		Timeout:  DefaultTimeout,
		Contract: contract.Default(),
		Currency: DefaultCurrency,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = DefaultCurrency
	}
	return cfg
}
