// Package testsupport provides a scripted stand-in for the external valuation
// API so client, screen and HTTP binding tests can run against a real
// listener without the prediction service.
package testsupport
