package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigFile is the default profiles file name.
const DefaultConfigFile = ".appstrap.yaml"

// envPrefix namespaces the environment variables viper reads, e.g.
// APPSTRAP_REPO_URL overrides the repo_url default.
const envPrefix = "APPSTRAP"

// LoadProfiles loads instance profiles from a YAML file through viper.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// decide how hard that is: fatal for an explicit --config path, ignorable
// for the default search.
func LoadProfiles(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("read profiles %s: %w", path, err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("parse profiles %s: %w", path, err)
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]Profile)
	}
	return &f, nil
}

// FindConfigFile searches for the profiles file in the following order:
//  1. If configPath is specified, use it directly
//  2. .appstrap.yaml in the current directory
//  3. config.yaml in the XDG config directory
//  4. .appstrap.yaml in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	xdgCandidate := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgCandidate); err == nil {
		return xdgCandidate
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}

// LoadDotEnv loads a .env file from dir into the process environment so
// the setup hook and service templates see the same variables a developer
// shell would. A missing .env is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
