package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// LoadPrincipal puts the caller's user ID on the request context. A bearer
// token takes precedence over the session cookie. Requests with neither, or
// with an invalid token, continue anonymously; services decide whether
// that is acceptable. Either source may be nil.
func LoadPrincipal(sm *SessionManager, tv *TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok, ok := bearerToken(r); ok && tv != nil {
				id, err := tv.Verify(tok)
				if err != nil {
					logger.Debug("rejected bearer token", zap.Error(err))
				} else {
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
					return
				}
			} else if sm != nil {
				if id, ok := sm.UserID(r); ok {
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
