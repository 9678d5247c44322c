package auth

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/chandamvula/pharmalink-backend/internal/apperr"
	"github.com/chandamvula/pharmalink-backend/internal/httpx"
)

// Principal is the authenticated caller, parsed once per request and passed
// down through the context.
type Principal struct {
	ID    string
	Email string
	Role  Role
}

type principalKey struct{}

// FromContext returns the request principal set by Authenticate.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Authenticate verifies the bearer token and stores the principal in the
// request context.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "access denied, no token provided"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		p := Principal{
			ID:    claims.Subject,
			Email: claims.Email,
			Role:  Role(claims.Role),
		}
		ctx := context.WithValue(r.Context(), principalKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route to one role. Must run after Authenticate.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "access denied"})
				return
			}
			if p.Role != role {
				httpx.Error(w, r, apperr.Forbidden("%s access only", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
