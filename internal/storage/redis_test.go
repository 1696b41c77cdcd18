package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/storyloom/storyloom/pkg/session"
)

func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), logger)

	return store, mr
}

func storedKnowledge() session.GameKnowledge {
	return session.GameKnowledge{
		Player: session.Player{
			Name:       "Alex",
			LocationID: "camp",
			Inventory:  []string{},
		},
		World: session.World{
			Genre: session.GenreAdventure,
			Locations: map[string]session.Location{
				"camp":  {ID: "camp", Name: "Base Camp"},
				"ridge": {ID: "ridge", Name: "Windward Ridge"},
			},
		},
		TurnCount: 0,
	}
}

func TestRedisStorage_CreateAndGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	s := session.New(store.AllocateSessionID(), "user-1", "The expedition begins.", storedKnowledge())
	if err := store.CreateSession(ctx, s); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	loaded, err := store.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected session, got nil")
	}
	if loaded.ID != s.ID {
		t.Errorf("Expected ID %s, got %s", s.ID, loaded.ID)
	}
	if loaded.UserID != "user-1" {
		t.Errorf("Expected user-1, got %s", loaded.UserID)
	}
	if loaded.Knowledge.Player.LocationID != "camp" {
		t.Errorf("Expected player at camp, got %s", loaded.Knowledge.Player.LocationID)
	}
}

func TestRedisStorage_CreateExisting(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	s := session.New(store.AllocateSessionID(), "", "hook", storedKnowledge())
	if err := store.CreateSession(ctx, s); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	err := store.CreateSession(ctx, s)
	if !errors.Is(err, ErrSessionExists) {
		t.Errorf("Expected ErrSessionExists, got %v", err)
	}
}

func TestRedisStorage_GetMissing(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	loaded, err := store.GetSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing session, got %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing session, got %+v", loaded)
	}
}

func TestRedisStorage_CommitTurn(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	s := session.New(store.AllocateSessionID(), "", "hook", storedKnowledge())
	if err := store.CreateSession(ctx, s); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	updated := storedKnowledge()
	updated.Player.LocationID = "ridge"
	updated.TurnCount = 1

	if err := store.CommitTurn(ctx, s.ID, &updated, 0); err != nil {
		t.Fatalf("Failed to commit turn: %v", err)
	}

	loaded, err := store.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if loaded.Knowledge.TurnCount != 1 {
		t.Errorf("Expected turn_count 1, got %d", loaded.Knowledge.TurnCount)
	}
	if loaded.Knowledge.Player.LocationID != "ridge" {
		t.Errorf("Expected player at ridge, got %s", loaded.Knowledge.Player.LocationID)
	}
	if !loaded.LastModified.After(s.LastModified) && !loaded.LastModified.Equal(s.LastModified) {
		t.Errorf("Expected LastModified to advance")
	}
}

func TestRedisStorage_CommitTurnConflict(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	s := session.New(store.AllocateSessionID(), "", "hook", storedKnowledge())
	if err := store.CreateSession(ctx, s); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	first := storedKnowledge()
	first.TurnCount = 1
	if err := store.CommitTurn(ctx, s.ID, &first, 0); err != nil {
		t.Fatalf("First commit failed: %v", err)
	}

	// A second writer still expecting turn 0 must be refused.
	stale := storedKnowledge()
	stale.TurnCount = 1
	err := store.CommitTurn(ctx, s.ID, &stale, 0)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	loaded, err := store.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if loaded.Knowledge.TurnCount != 1 {
		t.Errorf("Stale commit must not land, got turn_count %d", loaded.Knowledge.TurnCount)
	}
}

func TestRedisStorage_CommitMissingSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	k := storedKnowledge()
	err := store.CommitTurn(context.Background(), uuid.New(), &k, 0)
	if err == nil {
		t.Error("Expected error committing to a missing session")
	}
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()

	s := session.New(store.AllocateSessionID(), "", "hook", storedKnowledge())
	if err := store.CreateSession(ctx, s); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := store.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := store.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if loaded != nil {
		t.Error("Expected session to be gone after delete")
	}

	// Deleting a missing session is not an error.
	if err := store.DeleteSession(ctx, uuid.New()); err != nil {
		t.Errorf("Delete of missing session failed: %v", err)
	}
}
