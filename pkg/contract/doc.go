// Package contract carries the OpenAPI description of the external valuation
// API and validates outgoing requests and incoming 2xx bodies against it.
// kin-openapi types stay behind this package; callers see operation ids,
// Endpoint values and *ViolationError.
package contract
