// Package present turns valuation results into display models. Present is
// pure: it formats the price with locale-aware digit grouping, picks the
// label for the listing type, and hands failures through untouched alongside
// a message that is distinct for every failure kind.
package present
