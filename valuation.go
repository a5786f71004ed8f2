package valuation

import (
	"context"

	"github.com/goliatone/go-valuation/pkg/client"
	"github.com/goliatone/go-valuation/pkg/form"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/normalize"
	"github.com/goliatone/go-valuation/pkg/schema"
	"github.com/goliatone/go-valuation/pkg/screen"
)

// Features is the editable form state.
type Features = model.PropertyFeatures

// Request is the normalised wire payload sent to the valuation service.
type Request = model.ValuationRequest

// DisplayModel is what a screen shows after a submission settles.
type DisplayModel = model.DisplayModel

// Event is a single form edit.
type Event = form.Event

// Page aliases screen.Page so callers can pick a form binding without
// importing the screen package.
type Page = screen.Page

// Set and Toggle build form events.
var (
	Set    = form.Set
	Toggle = form.Toggle
)

// NewClient exposes the valuation client constructor from the top-level module.
func NewClient(options ...client.Option) *client.Client {
	return client.New(options...)
}

// NewScreen creates a form instance bound to submitter.
func NewScreen(submitter screen.Submitter, options ...screen.Option) (*screen.Screen, error) {
	return screen.New(submitter, options...)
}

// DefaultFeatures returns the initial form state for listingType.
func DefaultFeatures(listingType model.ListingType) Features {
	return schema.DefaultFeatures(listingType)
}

// Normalize derives the wire request from features.
func Normalize(features Features) (Request, error) {
	return normalize.Normalize(features)
}

// Estimate runs a one-shot valuation: it applies events to the default state
// of page, submits once and returns the presented result. A zero page means
// the predict page.
func Estimate(ctx context.Context, submitter screen.Submitter, page Page, events ...Event) (DisplayModel, error) {
	if page.Name == "" {
		page = screen.PredictPage
	}
	sc, err := screen.New(submitter, screen.WithPage(page))
	if err != nil {
		return DisplayModel{}, err
	}
	defer sc.Close()

	if _, err := sc.Apply(events...); err != nil {
		return DisplayModel{}, err
	}
	return sc.SubmitAndWait(ctx)
}
