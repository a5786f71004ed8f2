package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-valuation/pkg/client"
)

// ErrCredentialsRequired is returned when a username or password is blank.
var ErrCredentialsRequired = errors.New("auth: username and password are required")

// Authenticator is the remote side of login and registration.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (client.Credentials, error)
	Register(ctx context.Context, reg client.Registration) (client.Credentials, error)
}

var _ Authenticator = (*client.Client)(nil)

// Provider owns the current session. It is safe for concurrent use.
type Provider struct {
	auth   Authenticator
	logger *slog.Logger

	mu        sync.RWMutex
	session   Session
	listeners []func(Session)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInitialSession seeds the provider, e.g. from a saved token.
func WithInitialSession(s Session) ProviderOption {
	return func(p *Provider) {
		p.session = s
	}
}

// NewProvider constructs a Provider backed by auth.
func NewProvider(auth Authenticator, options ...ProviderOption) *Provider {
	p := &Provider{auth: auth, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Session returns the current session and whether one is active.
func (p *Provider) Session() (Session, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session, p.session.Authenticated()
}

// Landing resolves the landing route of the current session.
func (p *Provider) Landing() Route {
	s, _ := p.Session()
	return ResolveLandingRoute(s)
}

// Subscribe registers fn to run after every session change.
func (p *Provider) Subscribe(fn func(Session)) {
	if fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Login authenticates and replaces the current session.
func (p *Provider) Login(ctx context.Context, username, password string) (Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Session{}, ErrCredentialsRequired
	}
	creds, err := p.auth.Login(ctx, username, password)
	if err != nil {
		p.logger.Warn("login failed", slog.String("component", "auth_provider"), slog.String("username", username), slog.Any("error", err))
		return Session{}, err
	}
	return p.set(creds), nil
}

// Register creates an account and signs in with it.
func (p *Provider) Register(ctx context.Context, reg client.Registration) (Session, error) {
	if strings.TrimSpace(reg.Username) == "" || reg.Password == "" {
		return Session{}, ErrCredentialsRequired
	}
	creds, err := p.auth.Register(ctx, reg)
	if err != nil {
		p.logger.Warn("registration failed", slog.String("component", "auth_provider"), slog.String("username", reg.Username), slog.Any("error", err))
		return Session{}, err
	}
	return p.set(creds), nil
}

// Logout clears the session.
func (p *Provider) Logout() {
	p.replace(Session{})
}

func (p *Provider) set(creds client.Credentials) Session {
	s := Session{Token: creds.AccessToken, Role: ParseRole(creds.Role), Username: creds.Username}
	p.replace(s)
	p.logger.Info("session started", slog.String("component", "auth_provider"), slog.String("username", s.Username), slog.String("role", string(s.Role)))
	return s
}

func (p *Provider) replace(s Session) {
	p.mu.Lock()
	p.session = s
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
