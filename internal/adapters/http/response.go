package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prxgr4mmer/crypto-service/internal/domain"
)

// Response helpers for consistent JSON responses

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondErrorWithCode sends an error response with an error code
func respondErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondValidationError sends a 400 with the failed fields
func respondValidationError(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request",
		Code:    "INVALID_PARAMS",
		Details: validationMessage(err),
	})
}

// handleDomainError maps domain errors to HTTP responses.
// Causes are checked before the generic invocation failure.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidParams):
		respondErrorWithCode(w, http.StatusBadRequest, "invalid request parameters", "INVALID_PARAMS")

	case errors.Is(err, domain.ErrCredentialsRequired):
		respondErrorWithCode(w, http.StatusUnauthorized, "api keys required for this call", "CREDENTIALS_REQUIRED")

	case errors.Is(err, domain.ErrPolicyViolation):
		respondErrorWithCode(w, http.StatusBadRequest, "api keys not accepted by this server", "POLICY_VIOLATION")

	case errors.Is(err, domain.ErrAuthentication):
		respondErrorWithCode(w, http.StatusUnauthorized, "upstream rejected credentials", "UPSTREAM_AUTH")

	case errors.Is(err, domain.ErrSnapshotNotFound):
		respondErrorWithCode(w, http.StatusNotFound, "snapshot not found", "SNAPSHOT_NOT_FOUND")

	case errors.Is(err, domain.ErrExchangeUnavailable):
		respondErrorWithCode(w, http.StatusServiceUnavailable, "exchange service unavailable", "EXCHANGE_UNAVAILABLE")

	case errors.Is(err, domain.ErrRateLimited):
		respondErrorWithCode(w, http.StatusTooManyRequests, "rate limited by exchange", "RATE_LIMITED")

	case errors.Is(err, domain.ErrInvalidResponse):
		respondErrorWithCode(w, http.StatusBadGateway, "invalid response from exchange", "INVALID_EXCHANGE_RESPONSE")

	case errors.Is(err, domain.ErrInvocation):
		respondErrorWithCode(w, http.StatusBadGateway, "market data call failed", "INVOCATION_FAILED")

	default:
		respondErrorWithCode(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
