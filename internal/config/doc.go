// Package config loads, normalizes, and validates reelctl configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as GITHUB_TOKEN and REELCTL_WEBHOOK_URL. The
// persisted settings record (edited at runtime) is layered on top through the
// SettingsProvider interface so tests can supply fixed values.
package config
