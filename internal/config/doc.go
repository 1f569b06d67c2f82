// Package config loads application settings from an optional config.yaml and
// SCRY_-prefixed environment variables, validates them, and converts the
// scheduling and session sections into the values the core packages expect.
package config
