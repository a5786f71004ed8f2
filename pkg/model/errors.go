package model

import (
	"fmt"
	"strings"
)

// InvalidFieldError reports an edit targeting a field the schema does not know.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q", e.Field)
}

// ValidationError reports an edit whose value is outside the field domain.
// The previous state is retained by the reducer.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// IncompleteFeaturesError is returned by normalisation when required values
// are missing. Missing lists canonical field names.
type IncompleteFeaturesError struct {
	Missing []string
}

func (e *IncompleteFeaturesError) Error() string {
	return "incomplete features: " + strings.Join(e.Missing, ", ")
}
