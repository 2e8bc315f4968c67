// Package config loads publisher configuration from a YAML file and
// the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dsimansk/syndesis-rest/pkg/log"
)

// Environment variable names recognized by Load. Environment values
// override the configuration file.
const (
	// EnabledEnv toggles git publishing ("true"/"false").
	EnabledEnv = "GIT_PUBLISH_ENABLED"

	// LocalRepoPathEnv overrides the staging root directory.
	LocalRepoPathEnv = "GIT_LOCAL_REPO_PATH"

	// TokenEnv carries the auth token used for pushes and API calls.
	TokenEnv = "GIT_TOKEN"

	// AuthorNameEnv overrides the default commit author name.
	AuthorNameEnv = "GIT_AUTHOR_NAME"

	// AuthorEmailEnv overrides the default commit author email.
	AuthorEmailEnv = "GIT_AUTHOR_EMAIL"
)

// Config is the root of the publisher configuration.
type Config struct {
	Git GitConfig `yaml:"git"`
}

// GitConfig configures the repository publisher.
type GitConfig struct {
	// Enabled controls whether publishing is available at all.
	// Defaults to true when unset.
	Enabled bool `yaml:"enabled"`

	// LocalRepoPath is the staging root under which per-operation
	// working directories are created. Empty means the system temp
	// directory.
	LocalRepoPath string `yaml:"local_repo_path"`

	// AuthorName is the default commit author name.
	AuthorName string `yaml:"author_name"`

	// AuthorEmail is the default commit author email.
	AuthorEmail string `yaml:"author_email"`
}

// Default returns the configuration used when no file and no
// environment overrides are present.
func Default() Config {
	return Config{
		Git: GitConfig{
			Enabled: true,
		},
	}
}

// Load reads the configuration file at path, if any, and applies
// environment overrides on top. An empty path skips the file and
// loads defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnabledEnv); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Git.Enabled = enabled
		} else {
			log.Warn("ignoring unparsable boolean in environment",
				"var", EnabledEnv, "value", v)
		}
	}
	if v := os.Getenv(LocalRepoPathEnv); v != "" {
		c.Git.LocalRepoPath = v
	}
	if v := os.Getenv(AuthorNameEnv); v != "" {
		c.Git.AuthorName = v
	}
	if v := os.Getenv(AuthorEmailEnv); v != "" {
		c.Git.AuthorEmail = v
	}
}
