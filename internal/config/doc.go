// Package config loads, normalizes, and validates voxcache configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DATASET_UTILS for the annotation asset location. The Config type
// centralizes every knob the scanner, query layer, and CLI need, so the cache
// root and annotation asset are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
