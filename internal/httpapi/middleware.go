package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-valuation/pkg/auth"
)

func loggerMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpLogger := logger.With(
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("http_method", r.Method),
				slog.String("http_path", r.URL.Path),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			httpLogger.Info("request finished",
				slog.Int("status_code", ww.Status()),
				slog.Int("bytes_written", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// sessionMiddleware resolves the bearer token to a session started through
// this server and stores it in the request context.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearer(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		s.mu.RLock()
		provider := s.sessions[token]
		s.mu.RUnlock()
		if provider == nil {
			next.ServeHTTP(w, r)
			return
		}
		if session, ok := provider.Session(); ok {
			r = r.WithContext(auth.WithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// requireRoute rejects requests whose session may not open route. The body
// names the route the UI should go to instead.
func requireRoute(route auth.Route) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := auth.FromContext(r.Context())
			if to, ok := auth.Guard(route, session); !ok {
				if session.Authenticated() {
					writeRedirect(w, http.StatusForbidden, ErrForbidden, to)
				} else {
					writeRedirect(w, http.StatusUnauthorized, ErrUnauthorized, to)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
