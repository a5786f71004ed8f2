// Package httpapi exposes valuation screens, authentication, market analysis
// and payments to a browser UI over a chi router.
//
// Screens live in memory on the server. A browser creates one per mounted
// form, posts edit events to it, then submits; the in-flight guard and epoch
// cancellation are those of pkg/screen. Responses are JSON unless the caller
// asks for text/html or text/plain.
package httpapi
