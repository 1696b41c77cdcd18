package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/storage"
)

// SessionHandler serves raw session documents for debugging and console
// use, and the external deletion surface.
// Routes:
// GET /v1/session/{id}    - Read session by ID (owner-checked)
// DELETE /v1/session/{id} - Delete session by ID
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/session")
	idStr := strings.Trim(path, "/")
	if idStr == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Session ID is required")
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleRead(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, err := h.storage.GetSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if s == nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	if !s.OwnedBy(r.Header.Get(CallerIDHeader)) {
		writeError(w, h.logger, http.StatusForbidden, "Session is not owned by caller")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", id)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.logger.Debug("Session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
