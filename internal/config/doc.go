// Package config loads, normalizes, and validates Mediatorr configuration data.
//
// It supplies repository defaults, applies the environment variables used by
// container deployments (TRACKERS, TMDB_API_KEY, ENABLE_FILMS, ...), reads
// TOML files on top of them, and expands user paths. The Config type
// centralizes every knob the scanner and CLI need so destination trees,
// caches, and external tool names are resolved in one pass.
//
// Precedence is file > environment > defaults. Always obtain settings through
// this package so downstream code receives sanitized paths and clear
// validation errors.
package config
