// Package config holds the installer configuration: CLI-facing options,
// defaults, validation, per-instance profiles, and the XDG paths where
// appstrap keeps its journal and configuration files.
//
// Configuration priority (highest to lowest):
//  1. CLI flags
//  2. APPSTRAP_ environment variables
//  3. Instance profile from .appstrap.yaml
//  4. Profile defaults from .appstrap.yaml
//  5. Built-in defaults (NewConfig)
//
// The Config struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
package config
