package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-valuation/pkg/model"
	"github.com/goliatone/go-valuation/pkg/schema"
)

func invalid(field string, value any, reason string) error {
	return &model.ValidationError{Field: field, Value: value, Reason: reason}
}

func text(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case fmt.Stringer:
		return v.String(), true
	case model.ListingType:
		return string(v), true
	case model.City:
		return string(v), true
	case model.PropertyType:
		return string(v), true
	}
	return "", false
}

func toFloat(field string, value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, invalid(field, value, "a number is required")
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, invalid(field, value, "not a number")
		}
		f = parsed
	default:
		return 0, invalid(field, value, "not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(field, value, "must be a finite number")
	}
	return f, nil
}

// number validates a numeric edit against the field bounds.
func number(def schema.Field, value any) (float64, error) {
	f, err := toFloat(def.Name, value)
	if err != nil {
		return 0, err
	}
	if def.Min != nil && f < *def.Min {
		if *def.Min == 0 {
			return 0, invalid(def.Name, value, "must not be negative")
		}
		return 0, invalid(def.Name, value, fmt.Sprintf("must be at least %v", *def.Min))
	}
	if def.Max != nil && f > *def.Max {
		return 0, invalid(def.Name, value, fmt.Sprintf("must be at most %v", *def.Max))
	}
	return f, nil
}

func integer(def schema.Field, value any) (int, error) {
	f, err := number(def, value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, invalid(def.Name, value, "must be a whole number")
	}
	if f > math.MaxInt32 {
		return 0, invalid(def.Name, value, "is too large")
	}
	return int(f), nil
}

func boolean(def schema.Field, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case float64:
		if v == 0 || v == 1 {
			return v == 1, nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off", "":
			return false, nil
		}
	}
	return false, invalid(def.Name, value, "not a boolean")
}
