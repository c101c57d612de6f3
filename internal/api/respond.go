package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"shareit/internal/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// respondError maps service error kinds onto HTTP statuses. Anything
// unexpected becomes a 500 with a generic body.
func respondError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, errorMessage(err))
	case errors.Is(err, service.ErrBadRequest):
		writeError(w, http.StatusBadRequest, errorMessage(err))
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, errorMessage(err))
	default:
		logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// errorMessage strips the error-kind prefix the service layer wraps with,
// leaving the client-facing message intact.
func errorMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{service.ErrNotFound, service.ErrBadRequest, service.ErrConflict} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}
