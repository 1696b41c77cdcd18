package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnonymousUserID is the owner value for sessions created without a caller
// identity. Anonymous sessions are readable and playable by any caller.
const AnonymousUserID = "anonymous"

// Session is one player's persisted game, stored as a single document
// keyed by ID.
type Session struct {
	ID           uuid.UUID     `json:"id"`
	UserID       string        `json:"user_id"`
	InitialHook  string        `json:"initial_hook"`
	LastModified time.Time     `json:"last_modified"`
	Knowledge    GameKnowledge `json:"game_knowledge"`
}

// New constructs a session around freshly generated knowledge.
// The ID is allocated by the caller so it can be embedded before the
// first write.
func New(id uuid.UUID, userID string, initialHook string, k GameKnowledge) *Session {
	if userID == "" {
		userID = AnonymousUserID
	}
	return &Session{
		ID:           id,
		UserID:       userID,
		InitialHook:  initialHook,
		LastModified: time.Now(),
		Knowledge:    k,
	}
}

// OwnedBy reports whether uid may act on this session. Sessions owned by
// the anonymous sentinel are open to everyone.
func (s *Session) OwnedBy(uid string) bool {
	if s.UserID == AnonymousUserID {
		return true
	}
	return s.UserID == uid
}

// GameKnowledge is the world-state blob driving narration. It is replaced
// wholesale on every committed turn; the oracle never patches it.
type GameKnowledge struct {
	Player    Player `json:"player"`
	World     World  `json:"world"`
	TurnCount int    `json:"turn_count"`
}

type Player struct {
	Name       string   `json:"name"`
	LocationID string   `json:"location_id"`
	Inventory  []string `json:"inventory"`
}

type World struct {
	Genre            Genre                `json:"genre"`
	CoreConflict     string               `json:"core_conflict"`
	Locations        map[string]Location  `json:"locations"`
	Items            map[string]Item      `json:"items"`
	NPCs             map[string]NPC       `json:"npcs"`
	Countdown        Countdown            `json:"fluid_countdown"`
	DiscoverableInfo map[string]Discovery `json:"discoverable_info"`
	StoryFlags       map[string]any       `json:"story_flags"`
}

// Location is a place in the world. Map keys and the ID field carry the
// same value; the oracle emits both.
type Location struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Exits       map[string]Exit `json:"exits"`
	Items       []string        `json:"items"`
}

type Exit struct {
	ToLocationID string `json:"to_location_id"`
	Description  string `json:"description"`
	IsLocked     bool   `json:"is_locked,omitempty"`
	KeyID        string `json:"key_id,omitempty"`
}

type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NPC dispositions, friendliest to most hostile. "deceived" marks an NPC
// currently acting on false information.
const (
	DispositionFriendly   = "friendly"
	DispositionAllied     = "allied"
	DispositionNeutral    = "neutral"
	DispositionWary       = "wary"
	DispositionSuspicious = "suspicious"
	DispositionHostile    = "hostile"
	DispositionDeceived   = "deceived"
)

const (
	PlanActive    = "active"
	PlanFailed    = "failed"
	PlanSucceeded = "succeeded"
)

type NPC struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	IsKeyNPC        bool           `json:"is_key_npc"`
	LocationID      string         `json:"location_id"`
	Motivations     []string       `json:"motivations"`
	PersonalityTags []string       `json:"personality_tags"`
	SpeechStyleCues string         `json:"speech_style_cues"`
	Agenda          string         `json:"agenda"`
	Disposition     string         `json:"disposition"`
	Knowledge       map[string]any `json:"knowledge"`
	CurrentPlan     *Plan          `json:"current_plan,omitempty"`
}

type Plan struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Countdown is the story's ticking clock. Stages advance as the oracle
// escalates the plot.
type Countdown struct {
	Description  string   `json:"description"`
	Stages       []string `json:"stages"`
	CurrentStage int      `json:"current_stage"`
}

type Discovery struct {
	Description  string `json:"description"`
	IsDiscovered bool   `json:"is_discovered"`
}

// Validate checks the structural invariants the engine relies on. Oracle
// world content beyond these is trusted as-is.
func (k *GameKnowledge) Validate() error {
	if k.TurnCount < 0 {
		return fmt.Errorf("turn_count must not be negative, got %d", k.TurnCount)
	}
	if k.Player.LocationID == "" {
		return fmt.Errorf("player location_id is empty")
	}
	if _, ok := k.World.Locations[k.Player.LocationID]; !ok {
		return fmt.Errorf("player location %q is not in world locations", k.Player.LocationID)
	}
	return nil
}
