// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/jonathan/founder-match/internal/logging"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// subjectIDKey is the context key for the authenticated member's profile ID.
const subjectIDKey ContextKey = "subjectID"

// TokenValidator validates bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter extracts the member ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// AuthMiddleware validates the bearer token and stores the member it names in
// the request context. Requests without a valid token get a 401 JSON error.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected bearer token")
				unauthorized(w)
				return
			}

			subjectID := claims.GetUserID()
			if subjectID == uuid.Nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectIDKey, subjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>", accepting any case for the scheme.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}

// GetSubjectID extracts the authenticated member ID from the request context.
func GetSubjectID(r *http.Request) (uuid.UUID, error) {
	subjectID, ok := r.Context().Value(subjectIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("subject ID not found in request context")
	}
	return subjectID, nil
}

// WithSubjectID returns a copy of ctx carrying subjectID, for tests and
// internal callers that bypass token validation.
func WithSubjectID(ctx context.Context, subjectID uuid.UUID) context.Context {
	return context.WithValue(ctx, subjectIDKey, subjectID)
}
