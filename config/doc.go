// Package config loads, normalizes, and validates whiteboard configuration.
//
// It supplies defaults for every knob, expands user paths (including tilde
// shortcuts), reads TOML files, and reports clear validation errors. The CLI
// turns the resulting Config into builder options for the engine packages.
package config
