package screen

import (
	"log/slog"

	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/present"
)

// Options configures a Screen.
type Options struct {
	Page      Page
	Presenter *present.Presenter
	Contract  *contract.Contract
	Logger    *slog.Logger
	ID        string
}

// Option mutates Options.
type Option func(*Options)

// WithPage selects the page binding. The default is PredictPage.
func WithPage(page Page) Option {
	return func(o *Options) {
		o.Page = page
	}
}

// WithPresenter sets the presenter used for results.
func WithPresenter(p *present.Presenter) Option {
	return func(o *Options) {
		if p != nil {
			o.Presenter = p
		}
	}
}

// WithContract validates every outgoing request against c before it is
// submitted. Pass nil to skip validation.
func WithContract(c *contract.Contract) Option {
	return func(o *Options) {
		o.Contract = c
	}
}

// WithLogger sets the screen logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithID overrides the generated screen id.
func WithID(id string) Option {
	return func(o *Options) {
		if id != "" {
			o.ID = id
		}
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) Options {
	opts := Options{
		Page:     PredictPage,
		Contract: contract.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if opts.Presenter == nil {
		opts.Presenter = present.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
