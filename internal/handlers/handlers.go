package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/storyloom/storyloom/internal/engine"
)

// CallerIDHeader carries the optional caller identity. Absent means an
// anonymous caller.
const CallerIDHeader = "X-User-ID"

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusForError maps the engine taxonomy to HTTP statuses. Anything
// outside the taxonomy is internal.
func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error detail from clients while keeping the
// taxonomy errors readable.
func publicMessage(err error, status int) string {
	if status == http.StatusInternalServerError {
		return "Internal error. Please try again."
	}
	return err.Error()
}
