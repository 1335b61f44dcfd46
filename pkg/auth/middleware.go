package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey struct{}

// Session is what the middleware leaves in the request context.
type Session struct {
	UserID   string
	Username string
	Role     string
}

// FromContext returns the authenticated session, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// AccountResolver confirms the account behind a token still exists and
// reports its current role, so a deleted account or a demoted admin is shut
// out even while its token is still unexpired.
type AccountResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}

type Middleware struct {
	manager  *Manager
	accounts AccountResolver
}

func NewMiddleware(manager *Manager, accounts AccountResolver) *Middleware {
	return &Middleware{manager: manager, accounts: accounts}
}

// Require authenticates the request. With a role argument it additionally
// demands that role.
func (m *Middleware) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}
			claims, err := m.manager.Verify(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}
			currentRole, err := m.accounts.ResolveRole(r.Context(), claims.Subject)
			if err != nil {
				unauthorized(w)
				return
			}
			if role != "" && currentRole != role {
				forbidden(w)
				return
			}
			session := Session{UserID: claims.Subject, Username: claims.Username, Role: currentRole}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, session)))
		})
	}
}

// TokenFromRequest prefers the Authorization bearer header, falling back to
// the session cookie the storefront UI sets.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"message":"Forbidden"}`))
}
