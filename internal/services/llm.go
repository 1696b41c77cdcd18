package services

import (
	"context"

	"github.com/storyloom/storyloom/pkg/chat"
)

// LLMService is the narrative oracle: one-shot text completion, all game
// context re-embedded in each request. Substituted with MockLLM in tests.
type LLMService interface {
	// InitModel initializes the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a completion for the given messages.
	Chat(ctx context.Context, messages []chat.Message) (*chat.Response, error)
}
