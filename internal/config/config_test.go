package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"curator/internal/config"
)

func TestLoadDefaultsExpandPathsAndEnvCredentials(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENROUTER_API_KEY", "env-openrouter")
	t.Setenv("REDDIT_CLIENT_ID", "env-client")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "curator")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Backend.PriorityForum != "SMPchat" {
		t.Fatalf("unexpected priority forum: %q", cfg.Backend.PriorityForum)
	}
	if cfg.Backend.BaseURL != "http://127.0.0.1:5000" {
		t.Fatalf("unexpected backend base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.LLM.APIKey != "env-openrouter" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Reddit.ClientID != "env-client" {
		t.Fatalf("expected reddit client id from env, got %q", cfg.Reddit.ClientID)
	}
	if len(cfg.Scraper.Subreddits) == 0 || cfg.Scraper.Subreddits[0] != "SMPchat" {
		t.Fatalf("unexpected scraper subreddits: %v", cfg.Scraper.Subreddits)
	}
	if cfg.Retention.MaxAgeHours != 72 {
		t.Fatalf("unexpected retention window: %d", cfg.Retention.MaxAgeHours)
	}
	if cfg.SocketPath() != filepath.Join(wantData, "curatord.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "suggestions.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "curator.toml")

	type payload struct {
		Backend struct {
			BaseURL       string `toml:"base_url"`
			PriorityForum string `toml:"priority_forum"`
		} `toml:"backend"`
		Retention struct {
			MaxAgeHours int `toml:"max_age_hours"`
		} `toml:"retention"`
	}
	custom := payload{}
	custom.Backend.BaseURL = "https://suggestions.example.com/"
	custom.Backend.PriorityForum = "Hairloss"
	custom.Retention.MaxAgeHours = 12
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Backend.BaseURL != "https://suggestions.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.PriorityForum != "Hairloss" {
		t.Fatalf("expected priority forum override, got %q", cfg.Backend.PriorityForum)
	}
	if cfg.Retention.MaxAgeHours != 12 {
		t.Fatalf("expected retention override, got %d", cfg.Retention.MaxAgeHours)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_openrouter_api_key_here") {
		t.Fatalf("sample config missing placeholder LLM key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Backend.PriorityForum != "SMPchat" {
		t.Fatalf("unexpected sample priority forum: %q", cfg.Backend.PriorityForum)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed backend url")
	}

	cfg = config.Default()
	cfg.Backend.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = config.Default()
	cfg.Scraper.Enabled = true
	cfg.Scraper.Subreddits = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when scraper enabled without subreddits")
	}
}

func TestValidateServerRequiresCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = ""
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected error for missing llm api key")
	}

	cfg = config.Default()
	cfg.LLM.APIKey = "key"
	cfg.Reddit.ClientID = "id"
	cfg.Reddit.ClientSecret = "secret"
	cfg.Reddit.RefreshToken = ""
	if err := cfg.ValidateServer(); err == nil {
		t.Fatal("expected error for missing refresh token")
	}

	cfg.Reddit.RefreshToken = "token"
	if err := cfg.ValidateServer(); err != nil {
		t.Fatalf("ValidateServer returned error: %v", err)
	}
}
