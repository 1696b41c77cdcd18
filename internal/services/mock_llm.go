package services

import (
	"context"
	"sync"

	"github.com/storyloom/storyloom/pkg/chat"
)

// MockLLM is a deterministic stand-in for the oracle in tests.
type MockLLM struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.Message) (*chat.Response, error)

	// Call tracking.
	InitModelCalls []string
	ChatCalls      []ChatCall

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLM)(nil)

type ChatCall struct {
	Messages []chat.Message
}

func NewMockLLM() *MockLLM {
	return &MockLLM{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
	}
}

func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

func (m *MockLLM) Chat(ctx context.Context, messages []chat.Message) (*chat.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: messages})

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}
	return &chat.Response{Message: "Mock response"}, nil
}

// SetChatError makes every Chat call fail with err.
func (m *MockLLM) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.Message) (*chat.Response, error) {
		return nil, err
	}
}

// SetChatResponse makes every Chat call return the given text.
func (m *MockLLM) SetChatResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.Message) (*chat.Response, error) {
		return &chat.Response{Message: text}, nil
	}
}

// ChatCallCount returns how many Chat calls were made.
func (m *MockLLM) ChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}
