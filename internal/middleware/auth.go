package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/taskflow/taskflow-go/internal/crypto"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller resolved from token claims. It is
// trusted as decoded; the user row is not re-fetched per request.
type Identity struct {
	ID    string
	Email string
	Name  string
}

// Authenticate returns middleware that validates a Bearer token from the
// Authorization header and injects the caller identity into the request
// context. Missing, malformed, expired or badly signed tokens are all
// rejected with 401 before any handler runs.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeEnvelopeError(w, http.StatusUnauthorized, "authorization header is required")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeEnvelopeError(w, http.StatusUnauthorized, "authorization header must use the Bearer scheme")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeEnvelopeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			identity := Identity{
				ID:    claims.UserID,
				Email: claims.Email,
				Name:  claims.Name,
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the
// request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

func writeEnvelopeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
