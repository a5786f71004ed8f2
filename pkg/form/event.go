package form

import "fmt"

// Op is the kind of edit.
type Op string

const (
	OpSet    Op = "set"
	OpToggle Op = "toggle"
)

// Event is one discrete user edit. Value may be typed (int, float64, bool,
// model enums) or the raw text of an input element.
type Event struct {
	Op    Op     `json:"op"`
	Field string `json:"field"`
	Value any    `json:"value,omitempty"`
}

// Set assigns value to field.
func Set(field string, value any) Event {
	return Event{Op: OpSet, Field: field, Value: value}
}

// Toggle flips a boolean field.
func Toggle(field string) Event {
	return Event{Op: OpToggle, Field: field}
}

func (e Event) String() string {
	if e.Op == OpToggle {
		return fmt.Sprintf("toggle %s", e.Field)
	}
	return fmt.Sprintf("set %s=%v", e.Field, e.Value)
}
