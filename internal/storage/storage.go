package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/pkg/session"
)

// ErrSessionExists is returned by CreateSession when the id is already taken.
var ErrSessionExists = errors.New("session already exists")

// ErrConflict is returned by CommitTurn when another writer committed first.
var ErrConflict = errors.New("session was modified concurrently")

// Storage is the session document store. One document per session, keyed
// by the session id.
type Storage interface {
	// Ping tests the store connection.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error

	// AllocateSessionID returns a fresh unique session id. Allocated before
	// the first write so the id can be embedded in the document.
	AllocateSessionID() uuid.UUID

	// CreateSession writes a new session document. Never overwrites:
	// returns ErrSessionExists if the key is taken.
	CreateSession(ctx context.Context, s *session.Session) error

	// GetSession retrieves a session by id.
	// Returns nil, nil if the session doesn't exist.
	GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// CommitTurn replaces the session's knowledge and stamps LastModified,
	// conditional on the stored turn count still matching expectedTurn.
	// Returns ErrConflict if a concurrent turn committed first. Immutable
	// fields (id, owner, initial hook) are never rewritten.
	CommitTurn(ctx context.Context, id uuid.UUID, k *session.GameKnowledge, expectedTurn int) error

	// DeleteSession removes a session by id.
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
