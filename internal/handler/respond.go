package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/condo-care/backend/internal/domain"
)

// envelope is the response shape shared by every API endpoint
type envelope struct {
	Error   bool        `json:"error"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Error: false, Message: message, Data: data})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, envelope{Error: false, Data: data, Count: &count})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Error: false, Message: message})
}

// respondError maps domain sentinels to HTTP status codes; anything
// unrecognized is a 500 with the underlying message surfaced.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateReport),
		errors.Is(err, domain.ErrAlreadyReacted),
		errors.Is(err, domain.ErrConflictingReaction):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, envelope{Error: true, Message: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: true, Message: "invalid request body"})
		return false
	}
	return true
}
