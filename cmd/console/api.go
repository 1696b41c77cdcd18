package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CallerIDHeader carries the player identity on every API request.
const CallerIDHeader = "X-User-ID"

type CreateStoryRequest struct {
	Seed       string `json:"seed"`
	Genre      string `json:"genre"`
	PlayerName string `json:"player_name,omitempty"`
}

type CreateStoryResponse struct {
	SessionID   string `json:"session_id"`
	InitialHook string `json:"initial_hook"`
}

type TurnRequest struct {
	SessionID   string `json:"session_id"`
	PlayerInput string `json:"player_input"`
}

type TurnResponse struct {
	Narrative string `json:"narrative"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func createStory(client *http.Client, cfg *ConsoleConfig, seed, genre, playerName string) (*CreateStoryResponse, error) {
	reqBody := CreateStoryRequest{
		Seed:       seed,
		Genre:      genre,
		PlayerName: playerName,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, cfg.APIBaseURL+"/v1/story", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserID != "" {
		req.Header.Set(CallerIDHeader, cfg.UserID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var story CreateStoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &story, nil
}

func sendTurn(client *http.Client, cfg *ConsoleConfig, sessionID, playerInput string) (*TurnResponse, error) {
	reqBody := TurnRequest{
		SessionID:   sessionID,
		PlayerInput: playerInput,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, cfg.APIBaseURL+"/v1/turn", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.UserID != "" {
		req.Header.Set(CallerIDHeader, cfg.UserID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var turn TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &turn, nil
}

func deleteSession(client *http.Client, cfg *ConsoleConfig, sessionID string) error {
	req, err := http.NewRequest(http.MethodDelete, cfg.APIBaseURL+"/v1/session/"+sessionID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if cfg.UserID != "" {
		req.Header.Set(CallerIDHeader, cfg.UserID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
}
