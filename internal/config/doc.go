// Package config loads, normalizes, and validates campaignctl configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY. The Config type centralizes every knob the routing core and
// CLI need: provider credentials and unit costs, failover timing, cache
// eligibility thresholds, and logging output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical tier names, and clear validation errors.
package config
