package model

import (
	"errors"
	"strings"
)

// Environment errors.
var (
	// ErrUnknownEnvironment is returned when an environment label is not
	// one of the supported values.
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// Environment is the deployment target an installation is configured for.
// It decides which service template values and migration sets apply.
type Environment string

const (
	// EnvDevelopment is the local hacking target: verbose services,
	// developer assets, seed data.
	EnvDevelopment Environment = "development"

	// EnvStaging mirrors production settings against disposable data.
	EnvStaging Environment = "staging"

	// EnvProduction is the hardened target: no developer assets, no seed
	// data, production service tuning.
	EnvProduction Environment = "production"
)

// ParseEnvironment normalizes and validates an environment label.
// Common abbreviations (dev, stage, prod) are accepted because the setup
// scripts of existing checkouts emit them.
func ParseEnvironment(label string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "development", "dev":
		return EnvDevelopment, nil
	case "staging", "stage":
		return EnvStaging, nil
	case "production", "prod":
		return EnvProduction, nil
	default:
		return "", ErrUnknownEnvironment
	}
}

// String returns the canonical environment label.
func (e Environment) String() string {
	return string(e)
}

// IsProduction reports whether the environment is the hardened target.
func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// AllowsDeveloperAssets reports whether developer-mode steps (asset
// install, UI build) may run in this environment.
func (e Environment) AllowsDeveloperAssets() bool {
	return e == EnvDevelopment
}
