// Package template defines the template engine seam used by the text and HTML
// renderers. The pongo subpackage provides the pongo2-backed implementation.
package template
