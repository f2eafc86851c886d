// Package config loads, normalizes, and validates swansong configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// REPLICATE_API_TOKEN and MAIL_API_KEY. The Config type centralizes every knob
// the daemon and CLI need, from the HTTP bind address to per-stage pipeline
// timeouts and model pins.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical stage lists, and clear validation errors.
package config
