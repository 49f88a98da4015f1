// Package config loads, normalizes, and validates tagres configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves relative resource directories
// against the directory that holds the config file. The Config type
// centralizes the pattern pair, index settings, resource groups, and local
// state locations so the CLI can discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
