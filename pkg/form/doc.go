// Package form is the Form State Reducer. Reduce is a pure function from the
// current PropertyFeatures and one edit Event to the next PropertyFeatures.
// It applies the conditional resets declared by pkg/schema in the same
// transition as the edit that triggers them, so no intermediate state ever
// carries values the selected property type excludes.
//
// Set edits are idempotent: applying the same Set twice yields the state of
// applying it once. Toggle edits flip a boolean and are therefore not.
package form
