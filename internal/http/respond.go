package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("Failed encoding JSON response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses. Anything that
// is not a missing record, a conflict or a persistence failure came out
// of validation and reads as unprocessable input.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "record not found")
	case errors.Is(err, core.ErrAccountInUse):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrPersistence):
		slog.ErrorContext(r.Context(), "Persistence error", "error", err, "url", r.URL.Path)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	default:
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	}
}
