// Package config loads the checklist client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/checklist/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	endpoint = "http://127.0.0.1:8080/v1/graphql"
//	request_timeout = "5s"
//	poll_interval = "0s"   # 0 disables background polling
//	rate_limit = 0         # requests per second, 0 is unlimited
//	log_dir = "~/.local/share/checklist/logs"
//	log_level = "info"
//
// Every field is optional. Tilde expansion is applied to log_dir and a bare
// host:port endpoint gets an http:// scheme.
//
// # Validation
//
// After defaults are applied the result is checked with struct tags
// (go-playground/validator). Out-of-range values fail Load with an
// "invalid config" error instead of being silently clamped.
//
// Missing config files are NOT an error. The client works out of the box
// against a backend on localhost.
package config
