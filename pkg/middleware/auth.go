package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fkhayef/invoicevista/pkg/response"
)

// Token errors
var (
	ErrMissingToken = errors.New("authorization header required")
	ErrMalformed    = errors.New("invalid authorization header format")
)

// TokenResolver turns a bearer token into a request context carrying the
// caller's identity.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (context.Context, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrMalformed
	}
	return parts[1], nil
}

// RequireToken rejects requests without a token the resolver accepts
func RequireToken(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			ctx, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
