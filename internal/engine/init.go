package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/codec"
	"github.com/storyloom/storyloom/pkg/prompts"
	"github.com/storyloom/storyloom/pkg/session"
)

// DefaultPlayerName is used when the caller does not name their character.
const DefaultPlayerName = "Alex"

type CreateStoryRequest struct {
	Seed       string
	Genre      string
	PlayerName string
	CallerID   string // empty means anonymous
}

type CreateStoryResult struct {
	SessionID   uuid.UUID
	InitialHook string
}

// SessionInitializer creates exactly one new session from a story seed.
// Unlike turn processing there is no prior state to fall back to, so every
// failure after validation surfaces as an error.
type SessionInitializer struct {
	storage storage.Storage
	llm     services.LLMService
	logger  *slog.Logger
}

func NewSessionInitializer(storage storage.Storage, llm services.LLMService, logger *slog.Logger) *SessionInitializer {
	return &SessionInitializer{
		storage: storage,
		llm:     llm,
		logger:  logger,
	}
}

func (c *SessionInitializer) CreateStory(ctx context.Context, req CreateStoryRequest) (*CreateStoryResult, error) {
	seed := strings.TrimSpace(req.Seed)
	if seed == "" {
		return nil, fmt.Errorf("%w: seed is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(req.Genre) == "" {
		return nil, fmt.Errorf("%w: genre is required", ErrInvalidArgument)
	}
	genre, err := session.ParseGenre(req.Genre)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	playerName := strings.TrimSpace(req.PlayerName)
	if playerName == "" {
		playerName = DefaultPlayerName
	}

	messages := prompts.BuildStoryMessages(seed, genre, playerName)

	oracleCtx, cancel := context.WithTimeout(ctx, oracleTimeout)
	defer cancel()

	resp, err := c.llm.Chat(oracleCtx, messages)
	if err != nil {
		return nil, fmt.Errorf("oracle generation failed: %w", err)
	}

	hook, k, err := codec.DecodeStoryReply(resp.Message)
	if err != nil {
		return nil, fmt.Errorf("oracle generation reply did not decode: %w", err)
	}

	// Opening state is normalized regardless of what the oracle emitted.
	k.TurnCount = 0
	k.Player.Inventory = []string{}
	k.Player.Name = playerName
	k.World.Genre = genre

	// A player standing in a location the world doesn't contain is an
	// unplayable session; refuse to persist it.
	if err := k.Validate(); err != nil {
		return nil, fmt.Errorf("oracle produced an invalid world: %w", err)
	}

	id := c.storage.AllocateSessionID()
	s := session.New(id, req.CallerID, hook, *k)

	if err := c.storage.CreateSession(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to persist new session: %w", err)
	}

	c.logger.Info("Story created",
		"session_id", id,
		"genre", genre,
		"locations", len(k.World.Locations),
		"npcs", len(k.World.NPCs))

	return &CreateStoryResult{
		SessionID:   id,
		InitialHook: hook,
	}, nil
}
