package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Maheshwaran1303/todo-backend-redrf/internal/model"
	"github.com/Maheshwaran1303/todo-backend-redrf/internal/service"
)

const (
	msgNoCredentials = "Authentication credentials were not provided."
	msgInvalidToken  = "Token is invalid or expired"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticator resolves a bearer token to the requester's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Identity, error)
}

// JWTAuth returns middleware that validates a Bearer access token from the
// Authorization header and stores the resulting identity in the context.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeDetail(w, http.StatusUnauthorized, msgNoCredentials)
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeDetail(w, http.StatusUnauthorized, msgNoCredentials)
				return
			}

			id, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrInvalidToken) {
					writeDetail(w, http.StatusUnauthorized, msgInvalidToken)
					return
				}
				slog.ErrorContext(r.Context(), "authenticating request", "error", err)
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity, or the anonymous
// zero value when the request did not pass through JWTAuth.
func IdentityFromContext(ctx context.Context) model.Identity {
	id, _ := ctx.Value(identityKey).(model.Identity)
	return id
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": msg})
}
