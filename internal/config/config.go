package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
	APIBind string `toml:"api_bind"`
}

// Backend contains settings for talking to the suggestion server.
type Backend struct {
	BaseURL        string `toml:"base_url"`
	PriorityForum  string `toml:"priority_forum"`
	RequestTimeout int    `toml:"request_timeout"`
}

// LLM contains connection settings for the reply drafting model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Reddit contains OAuth and API settings for posting comments and scanning.
type Reddit struct {
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RefreshToken   string `toml:"refresh_token"`
	UserAgent      string `toml:"user_agent"`
	BaseURL        string `toml:"base_url"`
	TokenURL       string `toml:"token_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Scraper contains configuration for the periodic subreddit scan.
type Scraper struct {
	Enabled bool `toml:"enabled"`
	// Subreddits are scanned newest-first up to scan_limit posts each pass.
	Subreddits []string `toml:"subreddits"`
	// Keywords gate relevance for every forum except the priority forum.
	Keywords            []string `toml:"keywords"`
	ScanInterval        int      `toml:"scan_interval"`
	ScanLimit           int      `toml:"scan_limit"`
	PriorityWindowHours int      `toml:"priority_window_hours"`
	DefaultWindowHours  int      `toml:"default_window_hours"`
}

// Retention controls how long unresolved suggestions are kept.
type Retention struct {
	MaxAgeHours int `toml:"max_age_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for curator.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories and server bind address
//   - Backend: suggestion server URL, priority forum, timeouts
//   - LLM: OpenRouter-compatible connection settings for reply drafting
//   - Reddit: OAuth refresh-token credentials and API endpoints
//   - Scraper: subreddit scan windows, keywords, and cadence
//   - Retention: suggestion expiry
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Backend   Backend   `toml:"backend"`
	LLM       LLM       `toml:"llm"`
	Reddit    Reddit    `toml:"reddit"`
	Scraper   Scraper   `toml:"scraper"`
	Retention Retention `toml:"retention"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/curator/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/curator/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("curator.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon and server operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SocketPath returns the session daemon control socket location.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.DataDir, "curatord.sock")
}

// LockPath returns the session daemon single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "curatord.lock")
}

// ServerLockPath returns the suggestion server single-instance lock file.
func (c *Config) ServerLockPath() string {
	return filepath.Join(c.Paths.DataDir, "curator-server.lock")
}

// DatabasePath returns the suggestion database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "suggestions.db")
}

// BackendTimeout returns the suggestion server request timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeout) * time.Second
}

// RetentionWindow returns the suggestion expiry window as a duration.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.MaxAgeHours) * time.Hour
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
