// Package model defines the typed values shared by the valuation pipeline:
// the editable PropertyFeatures form state, the immutable ValuationRequest
// sent to the prediction endpoint, the Result union returned by the client,
// and the DisplayModel produced for the UI. Schema rules live in pkg/schema,
// state transitions in pkg/form and wire normalisation in pkg/normalize; this
// package only carries data and the error types those stages return.
package model
