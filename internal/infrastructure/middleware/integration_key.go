// Package middleware holds HTTP middleware shared by the API routes
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// IntegrationKeyHeader carries the caller's integration key
const IntegrationKeyHeader = "X-Integration-Key"

// KeyAuthorizer checks that an integration key belongs to a shop
type KeyAuthorizer interface {
	Authorize(ctx context.Context, key, shop string) (bool, error)
}

// IntegrationKey rejects requests whose X-Integration-Key is not bound to
// the {shop} route parameter. It must be mounted under a route that
// declares {shop}.
func IntegrationKey(authorizer KeyAuthorizer, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IntegrationKeyHeader)
			if key == "" {
				deny(w, http.StatusUnauthorized, "X-Integration-Key header is required")
				return
			}

			shop := chi.URLParam(r, "shop")
			ok, err := authorizer.Authorize(r.Context(), key, shop)
			if err != nil {
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to authorize integration key")
				deny(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !ok {
				logger.Warn().Str("shop", shop).Str("path", r.URL.Path).Msg("Integration key rejected")
				deny(w, http.StatusForbidden, "integration key is not valid for this shop")
				return
			}

			logger.Debug().Str("shop", shop).Msg("Authenticated using integration key")
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders sets conservative response headers on every request
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
