package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	discordAPIBaseURL   = "https://discord.com/api/v10"
	discordAuthorizeURL = "https://discord.com/oauth2/authorize"

	// Discord "Manage Server" permission bit, used to filter the guild list
	// down to servers the user can actually configure.
	permissionManageGuild = 1 << 5
)

// DiscordService implements the OAuth2 code flow against Discord and the
// authenticated REST calls the panel needs (current user, guild list).
// Access tokens are cached per user and refreshed from the stored refresh
// token when they expire.
type DiscordService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client

	// apiBaseURL and authorizeURL are overridable in tests.
	apiBaseURL   string
	authorizeURL string
	tokenURL     string

	mu     sync.Mutex
	tokens map[string]cachedToken // keyed by Discord user ID
}

type cachedToken struct {
	access string
	expiry time.Time
}

// TokenResponse is Discord's OAuth token grant response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// DiscordUser is the subset of /users/@me the panel cares about.
type DiscordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
	Avatar     string `json:"avatar"`
}

// DiscordGuild is one entry of /users/@me/guilds.
type DiscordGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions string `json:"permissions"`
}

// Manageable reports whether the user owns the guild or holds Manage Server.
func (g DiscordGuild) Manageable() bool {
	if g.Owner {
		return true
	}
	perms, err := strconv.ParseInt(g.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return perms&permissionManageGuild != 0
}

// NewDiscordService creates a DiscordService for the given OAuth application.
func NewDiscordService(clientID, clientSecret, redirectURI string) *DiscordService {
	return &DiscordService{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiBaseURL:   discordAPIBaseURL,
		authorizeURL: discordAuthorizeURL,
		tokenURL:     discordAPIBaseURL + "/oauth2/token",
		tokens:       make(map[string]cachedToken),
	}
}

// AuthorizeURL builds the Discord consent URL for the given CSRF state.
func (s *DiscordService) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "identify guilds")
	params.Set("state", state)
	return s.authorizeURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for tokens.
func (s *DiscordService) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.redirectURI)
	return s.requestToken(ctx, data)
}

// RefreshToken trades a refresh token for a fresh token pair.
// Discord rotates refresh tokens, so callers must persist the new one.
func (s *DiscordService) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return s.requestToken(ctx, data)
}

func (s *DiscordService) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token request returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResp, nil
}

// CacheAccessToken stores a freshly granted access token for a user so the
// next API call doesn't need a refresh round trip.
func (s *DiscordService) CacheAccessToken(userID string, token *TokenResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = cachedToken{
		access: token.AccessToken,
		expiry: time.Now().Add(time.Duration(token.ExpiresIn-60) * time.Second),
	}
}

// AccessTokenForUser returns a valid access token for the user, refreshing
// with the stored refresh token if the cached one is missing or expired.
// When a refresh happened, the rotated refresh token is returned as well and
// must be persisted by the caller.
func (s *DiscordService) AccessTokenForUser(ctx context.Context, userID, refreshToken string) (access, newRefresh string, err error) {
	s.mu.Lock()
	cached, ok := s.tokens[userID]
	s.mu.Unlock()

	if ok && time.Now().Before(cached.expiry) {
		return cached.access, "", nil
	}

	tokenResp, err := s.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", err
	}

	s.CacheAccessToken(userID, tokenResp)
	return tokenResp.AccessToken, tokenResp.RefreshToken, nil
}

// FetchUser returns the authenticated user's identity.
func (s *DiscordService) FetchUser(ctx context.Context, accessToken string) (*DiscordUser, error) {
	var user DiscordUser
	if err := s.getJSON(ctx, "/users/@me", accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchGuilds returns the guilds the authenticated user belongs to.
func (s *DiscordService) FetchGuilds(ctx context.Context, accessToken string) ([]DiscordGuild, error) {
	var guilds []DiscordGuild
	if err := s.getJSON(ctx, "/users/@me/guilds", accessToken, &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

func (s *DiscordService) getJSON(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("discord returned %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode discord response: %w", err)
	}
	return nil
}
