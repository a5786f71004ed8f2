// Package render turns a DisplayModel (and the market analysis view) into
// bytes for a given output: plain text for terminals, an HTML fragment for
// browsers, or JSON. Renderers register by name in a Registry; Negotiate picks
// one from an Accept header.
package render
