package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/contract"
	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
	"github.com/goliatone/go-valuation/pkg/screen"
)

var (
	ErrScreenNotFound = errors.New("httpapi: screen not found")
	ErrUnauthorized   = errors.New("httpapi: authentication required")
	ErrForbidden      = errors.New("httpapi: insufficient role")
	ErrBadRequest     = errors.New("httpapi: malformed request body")
	ErrUnknownPage    = errors.New("httpapi: unknown page")
)

// StatusError pins an HTTP status to an error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var (
		statusErr  StatusError
		invalid    *model.InvalidFieldError
		validation *model.ValidationError
		incomplete *model.IncompleteFeaturesError
		violation  *contract.ViolationError
		failure    *model.Failure
	)
	switch {
	case errors.As(err, &statusErr):
		return statusErr.StatusCode()
	case errors.Is(err, model.ErrSubmissionInProgress):
		return http.StatusConflict
	case errors.As(err, &invalid), errors.Is(err, auth.ErrCredentialsRequired), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.As(err, &validation), errors.As(err, &incomplete), errors.As(err, &violation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrScreenNotFound), errors.Is(err, ErrUnknownPage), errors.Is(err, schema.ErrUnknownCity):
		return http.StatusNotFound
	case errors.Is(err, screen.ErrClosed):
		return http.StatusGone
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &failure):
		return failureStatus(failure)
	default:
		return http.StatusInternalServerError
	}
}

func failureStatus(f *model.Failure) int {
	switch f.Kind {
	case model.ServerError:
		// Client errors from the valuation service are the caller's to fix.
		if f.StatusCode >= 400 && f.StatusCode < 500 {
			return f.StatusCode
		}
		return http.StatusBadGateway
	case model.Timeout:
		return http.StatusGatewayTimeout
	case model.Canceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

type errorBody struct {
	Error    string     `json:"error"`
	Kind     string     `json:"kind,omitempty"`
	Field    string     `json:"field,omitempty"`
	Missing  []string   `json:"missing,omitempty"`
	Redirect auth.Route `json:"redirect,omitempty"`
}

func errorPayload(err error) errorBody {
	body := errorBody{Error: err.Error()}
	var (
		failure    *model.Failure
		invalid    *model.InvalidFieldError
		validation *model.ValidationError
		incomplete *model.IncompleteFeaturesError
	)
	switch {
	case errors.As(err, &failure):
		body.Kind = string(failure.Kind)
	case errors.As(err, &invalid):
		body.Kind, body.Field = "invalid_field", invalid.Field
	case errors.As(err, &validation):
		body.Kind, body.Field = "validation", validation.Field
	case errors.As(err, &incomplete):
		body.Kind, body.Missing = "incomplete_features", incomplete.Missing
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload(err))
}

func writeRedirect(w http.ResponseWriter, status int, err error, to auth.Route) {
	body := errorPayload(err)
	body.Redirect = to
	writeJSON(w, status, body)
}
