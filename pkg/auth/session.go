package auth

import (
	"context"
	"strings"
)

// Role is the user role reported at login.
type Role string

const (
	RoleUser       Role = "user"
	RoleHost       Role = "host"
	RoleSuperAdmin Role = "superadmin"
)

// ParseRole normalises raw. Unknown or empty roles read as RoleUser.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleHost:
		return RoleHost
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

// Session is an authenticated user.
type Session struct {
	Token    string `json:"token"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// Authenticated reports whether s carries a token.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.Token) != ""
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || !s.Authenticated() {
		return Session{}, false
	}
	return s, true
}
