package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rehearsal/attendance/internal/model"
	"github.com/rehearsal/attendance/internal/session"
)

// SessionValidator defines the interface for session token validation
type SessionValidator interface {
	Validate(token string) (*session.Claims, error)
}

// Auth returns a middleware that validates session tokens
func Auth(sessions SessionValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				model.NewUnauthorizedError("missing or malformed authorization header").WriteJSON(w)
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				switch err {
				case session.ErrTokenExpired:
					model.NewUnauthorizedError("session expired").WriteJSON(w)
				case session.ErrInvalidSignature:
					model.NewUnauthorizedError("invalid session signature").WriteJSON(w)
				default:
					model.NewUnauthorizedError("invalid session token").WriteJSON(w)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth is like Auth but doesn't require authentication. It sets
// user info in context when a valid token is present and otherwise
// passes the request through anonymous.
func OptionalAuth(sessions SessionValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// ClaimsKey is the context key for session claims
const ClaimsKey contextKey = "claims"

// UserRoleKey is the context key for the user's role
const UserRoleKey contextKey = "userRole"

// GetUserID extracts the user ID from context
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetUserRole extracts the user's role from context
func GetUserRole(ctx context.Context) string {
	if role, ok := ctx.Value(UserRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetClaims extracts the session claims from context
func GetClaims(ctx context.Context) *session.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*session.Claims); ok {
		return claims
	}
	return nil
}
