package prompts

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/chat"
	"github.com/storyloom/storyloom/pkg/codec"
	"github.com/storyloom/storyloom/pkg/session"
)

// TurnBuilder constructs the message array for one turn of play.
// All context is re-embedded each turn; the oracle keeps no conversation
// state of its own.
type TurnBuilder struct {
	knowledge   *session.GameKnowledge
	playerInput string
}

func NewTurn() *TurnBuilder {
	return &TurnBuilder{}
}

func (b *TurnBuilder) WithKnowledge(k *session.GameKnowledge) *TurnBuilder {
	b.knowledge = k
	return b
}

func (b *TurnBuilder) WithPlayerInput(input string) *TurnBuilder {
	b.playerInput = input
	return b
}

// Build assembles system preamble + encoded state, the player action, and
// the trailing format reminder.
func (b *TurnBuilder) Build() ([]chat.Message, error) {
	if b.knowledge == nil {
		return nil, fmt.Errorf("game knowledge is required")
	}
	if b.playerInput == "" {
		return nil, fmt.Errorf("player input is required")
	}

	encoded, err := codec.EncodeKnowledge(b.knowledge)
	if err != nil {
		return nil, fmt.Errorf("error encoding knowledge for prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(NarratorSystemPrompt)
	sb.WriteString("\n\n### Current game knowledge state\n")
	sb.WriteString(encoded)

	return []chat.Message{
		{Role: chat.RoleSystem, Content: sb.String()},
		{Role: chat.RoleUser, Content: b.playerInput},
		{Role: chat.RoleSystem, Content: TurnReminderPrompt},
	}, nil
}

// BuildStoryMessages assembles the initial-generation prompt from the
// user's seed, genre, and player name.
func BuildStoryMessages(seed string, genre session.Genre, playerName string) []chat.Message {
	var sb strings.Builder
	sb.WriteString(StorySystemPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(KnowledgeSchemaPrompt)

	user := fmt.Sprintf("Story seed: %s\nGenre: %s\nPlayer name: %s",
		seed, genre.Display(), playerName)

	return []chat.Message{
		{Role: chat.RoleSystem, Content: sb.String()},
		{Role: chat.RoleUser, Content: user},
	}
}
