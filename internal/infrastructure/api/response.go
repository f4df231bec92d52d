package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"archie-shopify-sync/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps sync errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLeaseHeld):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSyncCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
