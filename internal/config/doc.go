// Package config loads, normalizes, and validates ytmp3 configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies environment overrides such as
// PORT. The Config type centralizes every knob the server and CLI need, so
// the downloads directory, tool binaries, and sweep timings are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
