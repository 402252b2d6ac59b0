package devserver

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
	"github.com/jrsteele09/viteviteapp/token/jwt"
	"github.com/jrsteele09/viteviteapp/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyRequestID stores the request correlation ID
	ContextKeyRequestID ContextKey = "request_id"
	// ContextKeyUser stores the authenticated user
	ContextKeyUser ContextKey = "user"
	// ContextKeyClaims stores the verified token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyToken stores the raw bearer token
	ContextKeyToken ContextKey = "token"
)

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// RequireAuth is middleware that validates a Bearer access token.
// Missing, malformed, expired and revoked tokens all answer 401.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="vitevite"`)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := s.tokens.Introspect(rawToken)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="vitevite", error="invalid_token"`)
				detail := "invalid token"
				if apperrors.Is(err, apperrors.ErrTokenExpired) {
					detail = "token expired"
				}
				writeError(w, http.StatusUnauthorized, detail)
				return
			}

			user, err := s.users.GetByID(claims.Sub)
			if err != nil || user.Blocked {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			ctx = context.WithValue(ctx, ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyToken, rawToken)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin is middleware that validates admin/super roles.
// Should be chained after RequireAuth. The role is read from the user record,
// not the token, so a demotion applies immediately.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil || !user.IsAdmin() {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next(w, r)
		}
	}
}

func currentUser(r *http.Request) *users.User {
	user, _ := r.Context().Value(ContextKeyUser).(*users.User)
	return user
}

func currentClaims(r *http.Request) *jwt.TokenIntrospection {
	claims, _ := r.Context().Value(ContextKeyClaims).(*jwt.TokenIntrospection)
	return claims
}
