// Package config loads and validates curator's TOML configuration.
//
// Load resolves the config path (explicit flag, ~/.config/curator/config.toml,
// then ./curator.toml), decodes it over the repository defaults, expands
// user-relative paths, and normalizes every section before validation.
// Credentials can come from the environment (OPENROUTER_API_KEY,
// REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, REDDIT_REFRESH_TOKEN) so the file
// never has to hold secrets.
//
// Validate covers what the CLI and session daemon need; ValidateServer adds
// the credential checks only curator-server requires.
package config
