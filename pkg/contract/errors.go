package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ViolationError reports a body that does not match the contract.
type ViolationError struct {
	Operation string
	// Pointer is a JSON pointer to the offending value.
	Pointer string
	Reason  string
	Err     error
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("contract: %s body at %s: %s", e.Operation, e.Pointer, e.Reason)
}

func (e *ViolationError) Unwrap() error { return e.Err }

func violation(id string, err error) *ViolationError {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return &ViolationError{
			Operation: id,
			Pointer:   "/" + strings.Join(schemaErr.JSONPointer(), "/"),
			Reason:    schemaErr.Reason,
			Err:       err,
		}
	}
	return &ViolationError{Operation: id, Pointer: "/", Reason: err.Error(), Err: err}
}
