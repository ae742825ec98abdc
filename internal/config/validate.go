package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable by the CLI and session daemon.
// Server-only requirements (LLM and Reddit credentials) are checked separately
// by ValidateServer so operator tooling works without posting credentials.
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}
	if err := c.validateScraper(); err != nil {
		return err
	}
	if c.Retention.MaxAgeHours <= 0 {
		return errors.New("retention.max_age_hours must be positive")
	}
	return nil
}

// ValidateServer ensures the configuration carries everything the suggestion
// server needs to generate and post comments.
func (c *Config) ValidateServer() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/curator/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'curator config init')", defaultPath)
	}
	if strings.TrimSpace(c.Reddit.ClientID) == "" {
		return errors.New("reddit.client_id is required (or set REDDIT_CLIENT_ID)")
	}
	if strings.TrimSpace(c.Reddit.ClientSecret) == "" {
		return errors.New("reddit.client_secret is required (or set REDDIT_CLIENT_SECRET)")
	}
	if strings.TrimSpace(c.Reddit.RefreshToken) == "" {
		return errors.New("reddit.refresh_token is required (or set REDDIT_REFRESH_TOKEN)")
	}
	if strings.TrimSpace(c.Reddit.UserAgent) == "" {
		return errors.New("reddit.user_agent must be set")
	}
	return nil
}

func (c *Config) validateBackend() error {
	parsed, err := url.Parse(c.Backend.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("backend.base_url %q must use http or https", c.Backend.BaseURL)
	}
	if c.Backend.PriorityForum == "" {
		return errors.New("backend.priority_forum must be set")
	}
	if c.Backend.RequestTimeout <= 0 {
		return errors.New("backend.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateScraper() error {
	if !c.Scraper.Enabled {
		return nil
	}
	if len(c.Scraper.Subreddits) == 0 {
		return errors.New("scraper.subreddits must include at least one forum when scraper.enabled is true")
	}
	if err := ensurePositiveMap(map[string]int{
		"scraper.scan_limit":            c.Scraper.ScanLimit,
		"scraper.priority_window_hours": c.Scraper.PriorityWindowHours,
		"scraper.default_window_hours":  c.Scraper.DefaultWindowHours,
	}); err != nil {
		return err
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
