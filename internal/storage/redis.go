package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storyloom/storyloom/pkg/session"
)

const sessionKeyPrefix = "session:"

// RedisStorage implements Storage using one Redis string per session,
// holding the JSON document.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup).
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) AllocateSessionID() uuid.UUID {
	return uuid.New()
}

func (r *RedisStorage) CreateSession(ctx context.Context, s *session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal session", "id", s.ID, "error", err)
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// SETNX so an allocated id can never clobber an existing document.
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), string(data), 0).Result()
	if err != nil {
		r.logger.Error("Failed to create session", "id", s.ID, "error", err)
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, s.ID)
	}

	return nil
}

func (r *RedisStorage) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Session not found", "id", id)
			return nil, nil
		}
		r.logger.Error("Failed to load session", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		r.logger.Error("Failed to unmarshal session", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &s, nil
}

// CommitTurn runs a WATCH-guarded read-modify-write: the stored document is
// re-read inside the transaction and the write only lands if the turn count
// still matches expectedTurn and no other writer touched the key.
func (r *RedisStorage) CommitTurn(ctx context.Context, id uuid.UUID, k *session.GameKnowledge, expectedTurn int) error {
	key := sessionKey(id)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return fmt.Errorf("session disappeared during commit: %s", id)
			}
			return fmt.Errorf("failed to load session for commit: %w", err)
		}

		var s session.Session
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return fmt.Errorf("failed to unmarshal session for commit: %w", err)
		}

		if s.Knowledge.TurnCount != expectedTurn {
			return fmt.Errorf("%w: expected turn %d, found %d", ErrConflict, expectedTurn, s.Knowledge.TurnCount)
		}

		s.Knowledge = *k
		s.LastModified = time.Now()

		updated, err := json.Marshal(&s)
		if err != nil {
			return fmt.Errorf("failed to marshal session for commit: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, string(updated), 0)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: key changed under transaction", ErrConflict)
	}
	if err != nil {
		r.logger.Error("Failed to commit turn", "id", id, "error", err)
		return err
	}

	return nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete session", "id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
