package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-valuation/pkg/auth"
	"github.com/goliatone/go-valuation/pkg/client"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string     `json:"token"`
	Role     auth.Role  `json:"role"`
	Username string     `json:"username"`
	Landing  auth.Route `json:"landing"`
}

func newSessionResponse(s auth.Session) sessionResponse {
	return sessionResponse{Token: s.Token, Role: s.Role, Username: s.Username, Landing: auth.ResolveLandingRoute(s)}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	provider := auth.NewProvider(s.opts.Client, auth.WithLogger(s.opts.Logger))
	session, err := provider.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	s.keep(session, provider)
	writeJSON(w, http.StatusOK, newSessionResponse(session))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body client.Registration
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	provider := auth.NewProvider(s.opts.Client, auth.WithLogger(s.opts.Logger))
	session, err := provider.Register(r.Context(), body)
	if err != nil {
		writeError(w, err)
		return
	}
	s.keep(session, provider)
	writeJSON(w, http.StatusCreated, newSessionResponse(session))
}

func (s *Server) keep(session auth.Session, provider *auth.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = provider
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearer(r)
	if !ok {
		writeError(w, StatusError{Code: http.StatusUnauthorized, Err: ErrUnauthorized})
		return
	}
	s.mu.Lock()
	provider := s.sessions[token]
	delete(s.sessions, token)
	var username string
	if provider != nil {
		if session, ok := provider.Session(); ok {
			username = session.Username
		}
	}
	for _, other := range s.sessions {
		if other == provider || username == "" {
			continue
		}
		if session, ok := other.Session(); ok && session.Username == username {
			// Another token still holds the account; keep its screens.
			username = ""
		}
	}
	s.mu.Unlock()

	if provider != nil {
		provider.Logout()
	}
	if username != "" {
		n := s.closeWhere(func(e screenEntry) bool { return e.owner == username })
		s.opts.Logger.Debug("logout closed screens", slog.String("username", username), slog.Int("screens", n))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]auth.Route{"route": auth.ResolveLandingRoute(session)})
}
