package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// tokenExpirySlack renews tokens this long before their reported expiry so an
// in-flight request never carries a token that dies mid-call.
const tokenExpirySlack = 60 * time.Second

type tokenManager struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenManager(cfg Config, httpClient *http.Client) *tokenManager {
	return &tokenManager{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid access token, refreshing through the OAuth
// refresh-token grant when the cached one is missing or near expiry.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", m.cfg.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("reddit token: new request: %w", err)
	}
	req.SetBasicAuth(m.cfg.ClientID, m.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", m.cfg.UserAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reddit token: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reddit token: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reddit token: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("reddit token: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("reddit token: %s", parsed.Error)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("reddit token: empty access token")
	}

	ttl := time.Duration(parsed.ExpiresIn) * time.Second
	if ttl <= tokenExpirySlack {
		ttl = tokenExpirySlack + time.Second
	}
	m.token = parsed.AccessToken
	m.expiresAt = m.now().Add(ttl - tokenExpirySlack)
	return m.token, nil
}

// invalidate drops the cached token so the next call refreshes.
func (m *tokenManager) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiresAt = time.Time{}
}
