package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Player actions the bot process accepts.
const (
	PlayerActionPause  = "pause"
	PlayerActionResume = "resume"
	PlayerActionSkip   = "skip"
	PlayerActionStop   = "stop"
)

// ErrBotUnavailable wraps failures to reach the bot's control API.
var ErrBotUnavailable = fmt.Errorf("bot unavailable")

// BotService relays playback control commands to the external bot process
// over its private HTTP API. The panel only proxies; the bot owns playback
// state and reports outcomes through the live-update events.
type BotService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewBotService creates a BotService targeting the given bot API.
func NewBotService(baseURL, apiKey string) *BotService {
	return &BotService{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// ValidAction reports whether the given string is a known player action.
func ValidAction(action string) bool {
	switch action {
	case PlayerActionPause, PlayerActionResume, PlayerActionSkip, PlayerActionStop:
		return true
	}
	return false
}

// PlayerAction sends a playback command for a guild to the bot.
func (s *BotService) PlayerAction(ctx context.Context, guildID, action string) error {
	return s.post(ctx, fmt.Sprintf("/guilds/%s/player/%s", guildID, action), nil)
}

// SetVolume sets the playback volume (0-100) for a guild.
func (s *BotService) SetVolume(ctx context.Context, guildID string, level int) error {
	body := map[string]int{"level": level}
	return s.post(ctx, fmt.Sprintf("/guilds/%s/player/volume", guildID), body)
}

func (s *BotService) post(ctx context.Context, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-bot-key", s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBotUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("bot returned %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}
