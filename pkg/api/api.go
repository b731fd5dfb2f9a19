// Package api provides standardized helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "stylesync-backend/internal/errors"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the body of the health and readiness probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Success sends a JSON response with optional data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a {"error": message} response.
func Error(w http.ResponseWriter, statusCode int, message string) {
	writeError(w, statusCode, ErrorResponse{Error: message})
}

// FromError renders err with the status its code maps to. Errors outside the
// unified hierarchy are reported as a generic 500 so internals do not leak.
func FromError(w http.ResponseWriter, err error) {
	var unified *apperrors.UnifiedError
	if !errors.As(err, &unified) {
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := unified.HTTPStatus()
	msg := unified.Message
	switch {
	case unified.Type == apperrors.ErrorTypeInternal:
		msg = "Internal server error"
	case unified.Type == apperrors.ErrorTypeDecode && unified.Resource != "":
		msg = unified.Resource + ": " + msg
	}
	writeError(w, status, ErrorResponse{Error: msg, Code: unified.Code.String()})
}

func writeError(w http.ResponseWriter, statusCode int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
