package template

import "io"

// TemplateRenderer is what the display renderers need from an engine: named
// templates resolved from the engine's file set and a context shared by every
// execution.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	GlobalContext(data any) error
}

// FilterRegistry is implemented by engines that accept custom filters.
type FilterRegistry interface {
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
}
