// Package auth resolves the acting principal of a request. A principal is
// loaded once per request by LoadPrincipal, from a bearer token or a session
// cookie, and placed on the context where services read it through Identity.
package auth

import "context"

// Identity supplies the authenticated user ID of the current call, or
// false when the caller is anonymous.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

type ctxKey string

const userIDKey ctxKey = "userID"

// WithUserID returns ctx carrying userID as the principal.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFrom returns the principal stored on ctx.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ContextIdentity reads the principal that LoadPrincipal put on the context.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (string, bool) {
	return UserIDFrom(ctx)
}
