package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/codec"
	"github.com/storyloom/storyloom/pkg/prompts"
)

// FallbackNarrative is returned when the oracle call fails or its reply
// cannot be decoded. The turn is a no-op: nothing is persisted and the
// turn count does not advance. This is a successful response, not an error.
const FallbackNarrative = "Reality flickers for a heartbeat, then settles back exactly as it was. The world was unaffected by a lapse in the storyteller's attention. Try your action again."

// OOCBanner prefixes the state dump returned for bracketed debug input.
const OOCBanner = "OOC State Inspector"

const oracleTimeout = 90 * time.Second

// TurnRequest carries one player action against one session.
type TurnRequest struct {
	SessionID   uuid.UUID
	PlayerInput string
	CallerID    string // empty means anonymous
}

// TurnResult is narrative-only: the updated state stays server-side.
type TurnResult struct {
	Narrative string
}

// TurnController applies exactly one player action to exactly one session.
type TurnController struct {
	storage storage.Storage
	llm     services.LLMService
	logger  *slog.Logger
}

func NewTurnController(storage storage.Storage, llm services.LLMService, logger *slog.Logger) *TurnController {
	return &TurnController{
		storage: storage,
		llm:     llm,
		logger:  logger,
	}
}

// ProcessTurn validates the request, loads the session, and either answers
// an out-of-character inspection or plays the action through the oracle.
// Oracle and decode failures degrade to FallbackNarrative with state
// untouched; persistence failures are surfaced, because by then a valid
// new state exists and losing it silently would be worse.
func (c *TurnController) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.SessionID == uuid.Nil {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidArgument)
	}
	input := strings.TrimSpace(req.PlayerInput)
	if input == "" {
		return nil, fmt.Errorf("%w: player input is required", ErrInvalidArgument)
	}

	s, err := c.storage.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.SessionID)
	}
	if !s.OwnedBy(req.CallerID) {
		return nil, fmt.Errorf("%w: session %s is not owned by caller", ErrPermissionDenied, req.SessionID)
	}

	// Out-of-character inspection: bracketed input dumps the current state
	// without consulting the oracle or mutating anything.
	if strings.HasPrefix(input, "[") && strings.HasSuffix(input, "]") {
		encoded, err := codec.EncodeKnowledge(&s.Knowledge)
		if err != nil {
			return nil, fmt.Errorf("failed to encode state for inspection: %w", err)
		}
		return &TurnResult{Narrative: OOCBanner + "\n\n" + encoded}, nil
	}

	messages, err := prompts.NewTurn().
		WithKnowledge(&s.Knowledge).
		WithPlayerInput(input).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build turn prompt: %w", err)
	}

	oracleCtx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()

	resp, err := c.llm.Chat(oracleCtx, messages)
	if err != nil {
		c.logger.Error("Oracle call failed, turn is a no-op",
			"session_id", req.SessionID, "error", err)
		return &TurnResult{Narrative: FallbackNarrative}, nil
	}

	narrative, updated, err := codec.DecodeTurnReply(resp.Message)
	if err != nil {
		c.logger.Error("Oracle reply did not decode, turn is a no-op",
			"session_id", req.SessionID, "error", err)
		return &TurnResult{Narrative: FallbackNarrative}, nil
	}

	// The turn count is owned by the engine, not the oracle.
	prevTurn := s.Knowledge.TurnCount
	updated.TurnCount = prevTurn + 1

	if err := c.storage.CommitTurn(ctx, s.ID, updated, prevTurn); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, req.SessionID)
		}
		return nil, fmt.Errorf("failed to persist turn: %w", err)
	}

	c.logger.Debug("Turn committed",
		"session_id", req.SessionID, "turn_count", updated.TurnCount)

	return &TurnResult{Narrative: narrative}, nil
}
