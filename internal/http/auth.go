package http

import (
	"context"
	"net/http"
	"strings"

	"agency/internal/auth"
	applog "agency/internal/log"
	"agency/internal/middleware/trace"
)

type sessionKey struct{}

// withSession resolves the request's bearer token into an auth.Session. A
// request without Authorization is anonymous; a bad token is rejected.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFor(r)
		if err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Rejected bearer token",
				applog.FieldComponent, applog.ComponentAuth,
				applog.FieldError, err)
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			NewJSONResponse().
				Status(http.StatusUnauthorized).
				Error(err.Error(), trace.GetRequestID(r.Context())).
				Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) sessionFor(r *http.Request) (*auth.Session, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || s.verifier == nil {
		return auth.Resolved(nil), nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, auth.ErrInvalidToken
	}
	id, err := s.verifier.Verify(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	return auth.Resolved(&id), nil
}

// sessionFrom returns the request session; requests outside withSession are anonymous.
func sessionFrom(ctx context.Context) *auth.Session {
	if sess, ok := ctx.Value(sessionKey{}).(*auth.Session); ok {
		return sess
	}
	return auth.Resolved(nil)
}
