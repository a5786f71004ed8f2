// Package visibility declares the contract used to decide whether a form field
// applies to the current state. pkg/schema attaches a rule to every field and
// evaluates it against the live PropertyFeatures values.
package visibility

// Evaluator determines whether a field applies given a rule string and the
// values it may reference.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context provides the inputs a rule can reference. Values holds form values
// keyed by canonical field name; Extras carries caller data such as a page
// name under the `extras.` prefix.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}

// Always is an Evaluator that treats every field as applicable.
var Always = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })
