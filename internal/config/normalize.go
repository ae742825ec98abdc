package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBackend()
	c.normalizeLLM()
	c.normalizeReddit()
	c.normalizeScraper()
	c.normalizeRetention()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeBackend() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaultBackendBaseURL
	}
	c.Backend.PriorityForum = strings.TrimSpace(c.Backend.PriorityForum)
	if c.Backend.PriorityForum == "" {
		c.Backend.PriorityForum = defaultPriorityForum
	}
	if c.Backend.RequestTimeout <= 0 {
		c.Backend.RequestTimeout = defaultBackendTimeout
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeReddit() {
	if c.Reddit.ClientID == "" {
		if value, ok := os.LookupEnv("REDDIT_CLIENT_ID"); ok {
			c.Reddit.ClientID = strings.TrimSpace(value)
		}
	}
	if c.Reddit.ClientSecret == "" {
		if value, ok := os.LookupEnv("REDDIT_CLIENT_SECRET"); ok {
			c.Reddit.ClientSecret = strings.TrimSpace(value)
		}
	}
	if c.Reddit.RefreshToken == "" {
		if value, ok := os.LookupEnv("REDDIT_REFRESH_TOKEN"); ok {
			c.Reddit.RefreshToken = strings.TrimSpace(value)
		}
	}
	c.Reddit.ClientID = strings.TrimSpace(c.Reddit.ClientID)
	c.Reddit.ClientSecret = strings.TrimSpace(c.Reddit.ClientSecret)
	c.Reddit.RefreshToken = strings.TrimSpace(c.Reddit.RefreshToken)
	c.Reddit.UserAgent = strings.TrimSpace(c.Reddit.UserAgent)
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = defaultRedditUserAgent
	}
	c.Reddit.BaseURL = strings.TrimRight(strings.TrimSpace(c.Reddit.BaseURL), "/")
	if c.Reddit.BaseURL == "" {
		c.Reddit.BaseURL = defaultRedditBaseURL
	}
	c.Reddit.TokenURL = strings.TrimSpace(c.Reddit.TokenURL)
	if c.Reddit.TokenURL == "" {
		c.Reddit.TokenURL = defaultRedditTokenURL
	}
	if c.Reddit.RequestTimeout <= 0 {
		c.Reddit.RequestTimeout = defaultRedditTimeout
	}
}

func (c *Config) normalizeScraper() {
	subs := make([]string, 0, len(c.Scraper.Subreddits))
	seen := make(map[string]struct{}, len(c.Scraper.Subreddits))
	for _, sub := range c.Scraper.Subreddits {
		trimmed := strings.TrimSpace(sub)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		subs = append(subs, trimmed)
	}
	if len(subs) == 0 {
		subs = defaultSubreddits()
	}
	c.Scraper.Subreddits = subs

	keywords := make([]string, 0, len(c.Scraper.Keywords))
	seenKeywords := make(map[string]struct{}, len(c.Scraper.Keywords))
	for _, keyword := range c.Scraper.Keywords {
		normalized := strings.ToLower(strings.TrimSpace(keyword))
		if normalized == "" {
			continue
		}
		if _, exists := seenKeywords[normalized]; exists {
			continue
		}
		seenKeywords[normalized] = struct{}{}
		keywords = append(keywords, normalized)
	}
	if len(keywords) == 0 {
		keywords = defaultKeywords()
	}
	c.Scraper.Keywords = keywords

	if c.Scraper.ScanInterval < 0 {
		c.Scraper.ScanInterval = 0
	}
	if c.Scraper.ScanLimit <= 0 {
		c.Scraper.ScanLimit = defaultScanLimit
	}
	if c.Scraper.PriorityWindowHours <= 0 {
		c.Scraper.PriorityWindowHours = defaultPriorityWindowHours
	}
	if c.Scraper.DefaultWindowHours <= 0 {
		c.Scraper.DefaultWindowHours = defaultDefaultWindowHours
	}
}

func (c *Config) normalizeRetention() {
	if c.Retention.MaxAgeHours <= 0 {
		c.Retention.MaxAgeHours = defaultRetentionMaxAgeHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
