// Package auth holds the explicit session state of a valuation front end.
// A Provider owns the current Session and is passed down to the bindings that
// need it; routing decisions are pure functions of a Session.
//
// Roles are trusted as reported by the API; this package makes navigation
// decisions, not authorization decisions.
package auth
