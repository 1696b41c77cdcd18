// Package codec maps game knowledge to and from the textual form exchanged
// with the narrative oracle. Decoding tolerates the framing noise LLMs add
// around JSON (markdown fences, language tags, stray prose) but performs no
// deep validation of world content: the oracle is trusted for semantics and
// defended against only for framing.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/session"
)

// ErrMalformed means the oracle reply could not be parsed as JSON at all.
var ErrMalformed = errors.New("malformed oracle response")

// ErrIncomplete means the reply parsed but lacked a required top-level key.
// Callers treat this identically to ErrMalformed.
var ErrIncomplete = errors.New("incomplete oracle response")

// EncodeKnowledge serializes game knowledge for embedding in a prompt.
// Pretty-printed so the model reads it the way a human would.
func EncodeKnowledge(k *session.GameKnowledge) (string, error) {
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode game knowledge: %w", err)
	}
	return string(data), nil
}

// scrub strips non-JSON wrapping from an oracle reply: code fences,
// language tags, and any prose before the first brace or after the last.
// Everything between the braces is left untouched, so fence characters
// inside narrative or world-state strings survive. Returns "" when no
// JSON object is present.
func scrub(raw string) string {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}

// DecodeTurnReply parses a turn-processing reply. The reply must carry a
// "narrative" string and an "updatedGkn" state object.
func DecodeTurnReply(raw string) (string, *session.GameKnowledge, error) {
	keys, err := parseTopLevel(raw)
	if err != nil {
		return "", nil, err
	}

	narrativeRaw, ok := keys["narrative"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing narrative", ErrIncomplete)
	}
	gknRaw, ok := keys["updatedGkn"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing updatedGkn", ErrIncomplete)
	}

	var narrative string
	if err := json.Unmarshal(narrativeRaw, &narrative); err != nil {
		return "", nil, fmt.Errorf("%w: narrative is not a string", ErrMalformed)
	}
	var k session.GameKnowledge
	if err := json.Unmarshal(gknRaw, &k); err != nil {
		return "", nil, fmt.Errorf("%w: updatedGkn does not decode: %v", ErrMalformed, err)
	}
	return narrative, &k, nil
}

// DecodeStoryReply parses an initial-generation reply. The reply must carry
// a "gkn" state object and an "initialHook" string.
func DecodeStoryReply(raw string) (string, *session.GameKnowledge, error) {
	keys, err := parseTopLevel(raw)
	if err != nil {
		return "", nil, err
	}

	hookRaw, ok := keys["initialHook"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing initialHook", ErrIncomplete)
	}
	gknRaw, ok := keys["gkn"]
	if !ok {
		return "", nil, fmt.Errorf("%w: missing gkn", ErrIncomplete)
	}

	var hook string
	if err := json.Unmarshal(hookRaw, &hook); err != nil {
		return "", nil, fmt.Errorf("%w: initialHook is not a string", ErrMalformed)
	}
	var k session.GameKnowledge
	if err := json.Unmarshal(gknRaw, &k); err != nil {
		return "", nil, fmt.Errorf("%w: gkn does not decode: %v", ErrMalformed, err)
	}
	return hook, &k, nil
}

func parseTopLevel(raw string) (map[string]json.RawMessage, error) {
	cleaned := scrub(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformed)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return keys, nil
}
