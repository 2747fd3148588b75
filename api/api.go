// Package api holds the http plumbing shared by the handlers: error
// mapping, authentication, request logging and timeouts.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linesmerrill/lost-found-api/config"
	"github.com/linesmerrill/lost-found-api/models"
)

// StatusFor maps a service error onto its http status code
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err with the status matching its kind
func WriteError(w http.ResponseWriter, message string, err error) {
	config.ErrorStatus(message, StatusFor(err), w, err)
}

// WriteJSON marshals v and writes it with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// DecodeJSON reads the request body into v, a malformed body is a
// validation error
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return models.Validationf("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Validationf("malformed request body: %v", err)
	}
	return nil
}
