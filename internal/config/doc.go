// Package config loads, normalizes, and validates marquee's TOML
// configuration. Defaults live in defaults.go, environment fallbacks
// (TMDB_API_KEY) are applied during normalization, and a commented sample
// file is embedded for `marquee config init`.
package config
