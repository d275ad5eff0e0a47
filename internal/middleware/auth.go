// Package middleware provides HTTP middleware for authentication, CORS
// handling, rate limiting, and request context management.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/swapfee/aura-discord-panel-sub000/internal/logging"
	"github.com/swapfee/aura-discord-panel-sub000/internal/relay"
	"github.com/swapfee/aura-discord-panel-sub000/internal/services"
)

type contextKey string

const (
	// ClaimsKey is the context key for storing session claims.
	ClaimsKey contextKey = "claims"
)

// AuthMiddleware validates the session JWT and adds claims to the request
// context. The token is read from the session cookie (how the dashboard
// sends it) or from a Bearer header. Returns 401 for missing/invalid tokens.
func AuthMiddleware(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := sessionToken(r)
			if !ok {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventMissingAuth, "missing session token")
				http.Error(w, `{"error":"missing session token"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				logging.LogSecurityEvent(r.Context(), logging.SecurityEventInvalidJWT, "invalid or expired token")
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionToken extracts the raw JWT from the session cookie or, failing
// that, from an Authorization: Bearer header.
func sessionToken(r *http.Request) (string, bool) {
	if token, ok := relay.SessionTokenFromHeader(r.Header.Get("Cookie")); ok {
		return token, true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// GetClaims retrieves the session claims from the request context.
// Returns nil if no claims are present (e.g., unauthenticated request).
func GetClaims(ctx context.Context) *services.Claims {
	claims, _ := ctx.Value(ClaimsKey).(*services.Claims)
	return claims
}
