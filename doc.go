// Package valuation is the top-level entry point of go-valuation. It re-exports
// the types most callers need and offers Estimate for one-shot requests.
//
// The building blocks live under pkg/: schema and form own the editable state,
// normalize turns it into a wire request, client talks to the valuation
// service, present turns results into display models and screen ties them
// together with a single in-flight submission per form.
package valuation
