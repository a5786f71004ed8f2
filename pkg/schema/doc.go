// Package schema is the Feature Schema of the valuation form: the ordered
// field catalogue, the applicability rule of every field, the value domains
// of the enumerated fields, and the per-city defaults read from the embedded
// catalogue.yaml.
//
// Applicability is declared once, as a visibility/expr rule on each Field.
// pkg/form (resets and toggle no-ops), pkg/normalize (zeroing) and the UI
// bindings (which fields to show) all ask IsApplicable instead of keeping
// their own list of fields that Land excludes.
package schema
