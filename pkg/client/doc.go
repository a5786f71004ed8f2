// Package client talks to the external valuation API. Submit performs exactly
// one POST /predict per call, never retries, and maps every outcome onto a
// model.Result. The auxiliary clients (auth, analysis, payment) share the same
// transport and return *model.Failure values as errors.
package client
