package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/pkg/session"
)

// MockStorage is an in-memory Storage for tests. It honors the same
// conditional-commit semantics as the Redis implementation.
type MockStorage struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session

	pingError   error
	createError error
	getError    error
	commitError error

	CreateCalls int
	CommitCalls int
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*session.Session),
	}
}

func (m *MockStorage) SetPingError(err error)   { m.pingError = err }
func (m *MockStorage) SetCreateError(err error) { m.createError = err }
func (m *MockStorage) SetGetError(err error)    { m.getError = err }
func (m *MockStorage) SetCommitError(err error) { m.commitError = err }

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) AllocateSessionID() uuid.UUID {
	return uuid.New()
}

func (m *MockStorage) CreateSession(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.createError != nil {
		return m.createError
	}
	if s == nil {
		return errors.New("session cannot be nil")
	}
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrSessionExists, s.ID)
	}

	copied := *s
	m.sessions[s.ID] = &copied
	return nil
}

func (m *MockStorage) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}
	s, exists := m.sessions[id]
	if !exists {
		return nil, nil
	}

	copied := *s
	return &copied, nil
}

func (m *MockStorage) CommitTurn(ctx context.Context, id uuid.UUID, k *session.GameKnowledge, expectedTurn int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CommitCalls++
	if m.commitError != nil {
		return m.commitError
	}
	s, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("session disappeared during commit: %s", id)
	}
	if s.Knowledge.TurnCount != expectedTurn {
		return fmt.Errorf("%w: expected turn %d, found %d", ErrConflict, expectedTurn, s.Knowledge.TurnCount)
	}

	s.Knowledge = *k
	s.LastModified = time.Now()
	return nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
