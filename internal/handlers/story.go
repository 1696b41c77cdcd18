package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/engine"
)

// CreateStoryRequest is the body for POST /v1/story.
type CreateStoryRequest struct {
	Seed       string `json:"seed"`
	Genre      string `json:"genre"`
	PlayerName string `json:"player_name,omitempty"`
}

type CreateStoryResponse struct {
	SessionID   uuid.UUID `json:"session_id"`
	InitialHook string    `json:"initial_hook"`
}

// StoryHandler handles story creation requests.
type StoryHandler struct {
	initializer *engine.SessionInitializer
	logger      *slog.Logger
}

func NewStoryHandler(initializer *engine.SessionInitializer, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		initializer: initializer,
		logger:      logger,
	}
}

func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for story endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	result, err := h.initializer.CreateStory(r.Context(), engine.CreateStoryRequest{
		Seed:       req.Seed,
		Genre:      req.Genre,
		PlayerName: req.PlayerName,
		CallerID:   r.Header.Get(CallerIDHeader),
	})
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Story creation failed", "error", err)
		} else {
			h.logger.Warn("Story creation rejected", "error", err)
		}
		writeError(w, h.logger, status, publicMessage(err, status))
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, CreateStoryResponse{
		SessionID:   result.SessionID,
		InitialHook: result.InitialHook,
	})
}
