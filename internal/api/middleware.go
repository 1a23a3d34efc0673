package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"maidbook/internal/accounts"
	"maidbook/internal/models"
)

type principalKey struct{}

// principalFrom returns the authenticated user set by requireAuth.
func principalFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey{}).(*models.User)
	return user
}

// requireAuth verifies HTTP Basic credentials against the accounts service
// and stores the principal in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="maidbook"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := s.accounts.Authenticate(r.Context(), username, password)
		if err != nil {
			if errors.Is(err, accounts.ErrUnknownUser) || errors.Is(err, accounts.ErrBadPassword) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			s.writeServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logAccess emits one structured line per request.
func (s *Server) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}
