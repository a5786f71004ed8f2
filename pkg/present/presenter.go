package present

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/goliatone/go-valuation/pkg/model"
)

// Options configures a Presenter.
type Options struct {
	Locale     string
	Translator Translator
	// Currency is used when a Success carries none.
	Currency  string
	OnMissing MissingTranslationHandler
}

// Option mutates Options.
type Option func(*Options)

// WithLocale selects the message and number locale, e.g. "en" or "fr-MA".
func WithLocale(locale string) Option {
	return func(o *Options) {
		o.Locale = locale
	}
}

// WithTranslator replaces the default catalog.
func WithTranslator(t Translator) Option {
	return func(o *Options) {
		o.Translator = t
	}
}

// WithCurrency sets the fallback currency code.
func WithCurrency(code string) Option {
	return func(o *Options) {
		o.Currency = code
	}
}

// WithMissingTranslationHandler overrides the handler used for absent keys.
func WithMissingTranslationHandler(fn MissingTranslationHandler) Option {
	return func(o *Options) {
		o.OnMissing = fn
	}
}

// Presenter formats results. It holds no mutable state.
type Presenter struct {
	opts    Options
	printer *message.Printer
}

// New constructs a Presenter. Defaults: English, DefaultCatalog, MAD.
func New(options ...Option) *Presenter {
	opts := Options{Locale: "en", Currency: "MAD"}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}
	if strings.TrimSpace(opts.Locale) == "" {
		opts.Locale = "en"
	}
	if opts.Translator == nil {
		opts.Translator = DefaultCatalog()
	}
	if opts.OnMissing == nil {
		opts.OnMissing = missingTranslationDefault
	}
	if strings.TrimSpace(opts.Currency) == "" {
		opts.Currency = "MAD"
	}

	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.English
	}
	return &Presenter{opts: opts, printer: message.NewPrinter(tag)}
}

// Locale returns the configured locale.
func (p *Presenter) Locale() string { return p.opts.Locale }

func (p *Presenter) translate(key string) string {
	msg, err := p.opts.Translator.Translate(p.opts.Locale, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return p.opts.OnMissing(p.opts.Locale, key, nil, err)
	}
	return msg
}

// Number formats v with the locale grouping and at most two decimals.
func (p *Presenter) Number(v float64) string {
	return p.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Integer formats n with the locale grouping.
func (p *Presenter) Integer(n int) string {
	return p.printer.Sprintf("%v", number.Decimal(n))
}

// Money formats amount followed by the currency code, e.g. "6,500 MAD".
func (p *Presenter) Money(amount float64, currency string) string {
	if strings.TrimSpace(currency) == "" {
		currency = p.opts.Currency
	}
	return p.Number(amount) + " " + currency
}

// Label returns the price label for listingType.
func (p *Presenter) Label(listingType model.ListingType) string {
	switch listingType {
	case model.ListingRent:
		return p.translate(KeyLabelRent)
	case model.ListingBuy:
		return p.translate(KeyLabelBuy)
	default:
		return p.translate(KeyLabelEstimate)
	}
}

// FailureMessage returns the user-facing message of kind.
func (p *Presenter) FailureMessage(kind model.FailureKind) string {
	key := FailureKey(string(kind))
	msg, err := p.opts.Translator.Translate(p.opts.Locale, key)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	if fallback, err := p.opts.Translator.Translate(p.opts.Locale, FailureKey("unknown")); err == nil && fallback != "" {
		return fallback
	}
	return p.opts.OnMissing(p.opts.Locale, key, nil, err)
}

// Present builds the DisplayModel of result. Failures are referenced as is;
// Detail carries the server supplied message of a ServerError. A nil result
// yields the zero DisplayModel.
func (p *Presenter) Present(result model.Result, listingType model.ListingType) model.DisplayModel {
	switch r := result.(type) {
	case model.Success:
		currency := r.Currency
		if strings.TrimSpace(currency) == "" {
			currency = p.opts.Currency
		}
		return model.DisplayModel{
			ListingType: listingType,
			Label:       p.Label(listingType),
			Value:       p.Money(r.PredictedPrice, currency),
			Amount:      r.PredictedPrice,
			Currency:    currency,
		}
	case *model.Failure:
		if r == nil {
			return model.DisplayModel{}
		}
		display := model.DisplayModel{
			ListingType: listingType,
			Failure:     r,
			Message:     p.FailureMessage(r.Kind),
			Dismissible: true,
		}
		if r.Kind == model.ServerError {
			display.Detail = r.Message
		}
		return display
	default:
		return model.DisplayModel{}
	}
}

// Present formats result with a default Presenter.
func Present(result model.Result, listingType model.ListingType) model.DisplayModel {
	return New().Present(result, listingType)
}
