// Package screen binds the form reducer, the normalizer, the valuation client
// and the presenter into one controller per form instance.
//
// A Screen owns its PropertyFeatures. At most one submission is in flight at
// a time; a second Submit is rejected with model.ErrSubmissionInProgress and
// never reaches the network. Every submission carries an epoch. Abandon and
// Close bump the epoch and cancel the outstanding call, so a late result is
// discarded instead of being applied to a view that moved on.
package screen
