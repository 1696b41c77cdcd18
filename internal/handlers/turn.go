package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/engine"
)

// TurnRequest is the body for POST /v1/turn.
type TurnRequest struct {
	SessionID   uuid.UUID `json:"session_id"`
	PlayerInput string    `json:"player_input"`
}

type TurnResponse struct {
	Narrative string `json:"narrative"`
}

// TurnHandler handles turn-processing requests.
type TurnHandler struct {
	controller *engine.TurnController
	logger     *slog.Logger
}

func NewTurnHandler(controller *engine.TurnController, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		controller: controller,
		logger:     logger,
	}
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for turn endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	result, err := h.controller.ProcessTurn(r.Context(), engine.TurnRequest{
		SessionID:   req.SessionID,
		PlayerInput: req.PlayerInput,
		CallerID:    r.Header.Get(CallerIDHeader),
	})
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Turn processing failed", "error", err, "session_id", req.SessionID)
		} else {
			h.logger.Warn("Turn rejected", "error", err, "session_id", req.SessionID)
		}
		writeError(w, h.logger, status, publicMessage(err, status))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, TurnResponse{Narrative: result.Narrative})
}
