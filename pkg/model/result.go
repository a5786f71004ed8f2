package model

import (
	"fmt"
	"strings"
)

// Result is the outcome of one valuation submission: either Success or
// *Failure. Callers switch on the concrete type.
type Result interface {
	isResult()
}

// Success carries the price returned by the prediction service.
type Success struct {
	PredictedPrice float64 `json:"predicted_price"`
	Currency       string  `json:"currency,omitempty"`
}

func (Success) isResult() {}

// FailureKind classifies boundary failures. Every kind maps to a distinct
// user-facing message in pkg/present.
type FailureKind string

const (
	NetworkError         FailureKind = "network_error"
	ServerError          FailureKind = "server_error"
	MalformedResponse    FailureKind = "malformed_response"
	Timeout              FailureKind = "timeout"
	SubmissionInProgress FailureKind = "submission_in_progress"
	Canceled             FailureKind = "canceled"
)

// FailureKinds lists every failure kind.
func FailureKinds() []FailureKind {
	return []FailureKind{NetworkError, ServerError, MalformedResponse, Timeout, SubmissionInProgress, Canceled}
}

// Failure describes a valuation that did not produce a price. It doubles as
// an error so auxiliary clients can return it directly.
type Failure struct {
	Kind       FailureKind `json:"kind"`
	Message    string      `json:"message,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Err        error       `json:"-"`
}

func (*Failure) isResult() {}

// ErrSubmissionInProgress is returned when a screen already has a request in
// flight. Compare with errors.Is; any Failure of the same kind matches.
var ErrSubmissionInProgress = &Failure{Kind: SubmissionInProgress, Message: "a valuation is already in progress"}

// NewFailure builds a Failure of the given kind.
func NewFailure(kind FailureKind, message string, err error) *Failure {
	return &Failure{Kind: kind, Message: strings.TrimSpace(message), Err: err}
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(string(f.Kind))
	if f.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", f.StatusCode)
	}
	if f.Message != "" {
		b.WriteString(": ")
		b.WriteString(f.Message)
	} else if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// Is matches any Failure with the same kind.
func (f *Failure) Is(target error) bool {
	other, ok := target.(*Failure)
	if !ok || f == nil || other == nil {
		return false
	}
	return f.Kind == other.Kind
}
