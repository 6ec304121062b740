// Package middleware authenticates API requests: bearer JWTs for user-scoped
// routes and a shared x-api-key for extension routes.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// APIKeyHeader carries the extension's shared secret.
const APIKeyHeader = "x-api-key"

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const userIDKey ContextKey = "userID"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter extracts the user ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// KeyVerifier checks an API key.
type KeyVerifier interface {
	VerifyAPIKey(key string) bool
}

// Rejecter writes the response for an unauthenticated request.
type Rejecter func(w http.ResponseWriter, r *http.Request, message string)

// AuthMiddleware validates "Authorization: Bearer <token>" and stores the
// token's user ID in the request context.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				JSONUnauthorized(w, r, "Missing or invalid authorization header")
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				JSONUnauthorized(w, r, "Invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.GetUserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyMiddleware admits requests whose x-api-key header passes keys.
// Rejected requests are answered by reject, so each route keeps its own
// failure body.
func APIKeyMiddleware(keys KeyVerifier, reject Rejecter) func(http.Handler) http.Handler {
	if reject == nil {
		reject = JSONUnauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !keys.VerifyAPIKey(r.Header.Get(APIKeyHeader)) {
				reject(w, r, "Invalid or missing API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSONUnauthorized writes 401 {"error": message}.
func JSONUnauthorized(w http.ResponseWriter, _ *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user ID not found in request context")
	}
	return userID, nil
}

// WithUserID returns ctx carrying userID, as AuthMiddleware stores it.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
