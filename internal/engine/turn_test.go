package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/storyloom/storyloom/internal/services"
	"github.com/storyloom/storyloom/internal/storage"
	"github.com/storyloom/storyloom/pkg/codec"
	"github.com/storyloom/storyloom/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func testKnowledge() session.GameKnowledge {
	return session.GameKnowledge{
		Player: session.Player{
			Name:       "Alex",
			LocationID: "crypt",
			Inventory:  []string{"torch"},
		},
		World: session.World{
			Genre:        session.GenreHorror,
			CoreConflict: "Something stirs below the chapel",
			Locations: map[string]session.Location{
				"crypt":  {ID: "crypt", Name: "The Crypt"},
				"chapel": {ID: "chapel", Name: "Ruined Chapel"},
			},
		},
		TurnCount: 0,
	}
}

// seedSession creates a session directly in storage and returns it.
func seedSession(t *testing.T, store *storage.MockStorage, owner string) *session.Session {
	t.Helper()
	s := session.New(store.AllocateSessionID(), owner, "The chapel door hangs open.", testKnowledge())
	require.NoError(t, store.CreateSession(context.Background(), s))
	return s
}

// oracleTurnReply wraps a narrative and state into the wire form the
// controller expects back from the oracle.
func oracleTurnReply(t *testing.T, narrative string, k *session.GameKnowledge) string {
	t.Helper()
	encoded, err := codec.EncodeKnowledge(k)
	require.NoError(t, err)
	return fmt.Sprintf(`{"narrative":%q,"updatedGkn":%s}`, narrative, encoded)
}

func TestProcessTurn_Success(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)

	updated := testKnowledge()
	updated.Player.LocationID = "chapel"
	llm.SetChatResponse(oracleTurnReply(t, "You climb the worn stairs into the chapel.", &updated))

	result, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "go up to the chapel",
	})
	require.NoError(t, err)
	assert.Equal(t, "You climb the worn stairs into the chapel.", result.Narrative)
	assert.Equal(t, 1, llm.ChatCallCount())

	stored, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "chapel", stored.Knowledge.Player.LocationID)
	assert.Equal(t, 1, stored.Knowledge.TurnCount)
}

func TestProcessTurn_TurnCountAdvancesPerTurn(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)

	// The oracle emits a bogus turn count every time; the engine must
	// overwrite it with its own.
	for i := 0; i < 3; i++ {
		current, err := store.GetSession(context.Background(), s.ID)
		require.NoError(t, err)

		next := current.Knowledge
		next.TurnCount = 999
		llm.SetChatResponse(oracleTurnReply(t, "The night deepens.", &next))

		_, err = controller.ProcessTurn(context.Background(), TurnRequest{
			SessionID:   s.ID,
			PlayerInput: "wait and listen",
		})
		require.NoError(t, err)
	}

	stored, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Knowledge.TurnCount)
}

func TestProcessTurn_InvalidArguments(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	tests := []struct {
		name string
		req  TurnRequest
	}{
		{"nil session id", TurnRequest{SessionID: uuid.Nil, PlayerInput: "look"}},
		{"empty input", TurnRequest{SessionID: uuid.New(), PlayerInput: ""}},
		{"whitespace input", TurnRequest{SessionID: uuid.New(), PlayerInput: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := controller.ProcessTurn(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	assert.Equal(t, 0, llm.ChatCallCount(), "validation failures must not reach the oracle")
}

func TestProcessTurn_SessionNotFound(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	_, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   uuid.New(),
		PlayerInput: "look around",
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, llm.ChatCallCount())
}

func TestProcessTurn_PermissionDenied(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, "owner-1")

	_, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "look around",
		CallerID:    "intruder",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, 0, llm.ChatCallCount())

	// An anonymous caller is also rejected on an owned session.
	_, err = controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "look around",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestProcessTurn_OOCInspection(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)

	before, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)

	result, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "  [show me the state]  ",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Narrative, OOCBanner))
	assert.Contains(t, result.Narrative, `"turn_count": 0`)
	assert.Contains(t, result.Narrative, "The Crypt")

	assert.Equal(t, 0, llm.ChatCallCount(), "inspection must not consult the oracle")
	assert.Equal(t, 0, store.CommitCalls, "inspection must not write")

	stored, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Knowledge.TurnCount)
	assert.True(t, stored.LastModified.Equal(before.LastModified), "inspection must not touch the document")
}

func TestProcessTurn_OracleFailureFallsBack(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)
	llm.SetChatError(errors.New("upstream timeout"))

	before, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)

	result, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "open the sarcophagus",
	})
	require.NoError(t, err, "oracle failure is a degraded success, not an error")
	assert.Equal(t, FallbackNarrative, result.Narrative)
	assert.Equal(t, 0, store.CommitCalls)

	stored, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Knowledge.TurnCount, "failed turn must not advance state")
	assert.True(t, stored.LastModified.Equal(before.LastModified), "failed turn must not touch the document")
}

func TestProcessTurn_MalformedReplyFallsBack(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)

	before, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)

	replies := []string{
		"I cannot continue this story.",
		`{"narrative":"missing the state"}`,
		`{"narrative":"truncated","updatedGkn":{`,
	}

	for _, reply := range replies {
		llm.SetChatResponse(reply)
		result, err := controller.ProcessTurn(context.Background(), TurnRequest{
			SessionID:   s.ID,
			PlayerInput: "open the sarcophagus",
		})
		require.NoError(t, err)
		assert.Equal(t, FallbackNarrative, result.Narrative)
	}

	assert.Equal(t, 0, store.CommitCalls)
	stored, err := store.GetSession(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Knowledge.TurnCount)
	assert.True(t, stored.LastModified.Equal(before.LastModified), "unusable replies must not touch the document")
}

func TestProcessTurn_CommitConflict(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)
	updated := testKnowledge()
	llm.SetChatResponse(oracleTurnReply(t, "You act.", &updated))
	store.SetCommitError(fmt.Errorf("%w: concurrent writer", storage.ErrConflict))

	_, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "act quickly",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProcessTurn_PersistFailureSurfaces(t *testing.T) {
	store := storage.NewMockStorage()
	llm := services.NewMockLLM()
	controller := NewTurnController(store, llm, testLogger())

	s := seedSession(t, store, session.AnonymousUserID)
	updated := testKnowledge()
	llm.SetChatResponse(oracleTurnReply(t, "You act.", &updated))
	store.SetCommitError(errors.New("connection reset"))

	_, err := controller.ProcessTurn(context.Background(), TurnRequest{
		SessionID:   s.ID,
		PlayerInput: "act quickly",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConflict)
}
