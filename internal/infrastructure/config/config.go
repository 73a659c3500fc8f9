// Package config loads workspace-level settings for the tracker and CLI.
package config

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/stepwise/pkg/domain/tracking"
	"github.com/felixgeelhaar/stepwise/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Config stores tracker defaults outside the domain model.
type Config struct {
	// Mode is "ordered" (default) or "unordered".
	Mode string `yaml:"mode,omitempty"`
	// DefaultActor is used when a command omits --actor.
	DefaultActor string `yaml:"default_actor,omitempty"`
	// CountSkippedAsDone controls the completion ratio; nil means true.
	CountSkippedAsDone *bool `yaml:"count_skipped_as_done,omitempty"`
}

// TrackerOptions converts the config into tracker construction options.
func (c *Config) TrackerOptions() []tracking.Option {
	if c == nil {
		return nil
	}
	var opts []tracking.Option
	if c.Mode == "unordered" {
		opts = append(opts, tracking.Unordered())
	}
	if c.CountSkippedAsDone != nil {
		opts = append(opts, tracking.CountSkippedAsDone(*c.CountSkippedAsDone))
	}
	return opts
}

// Actor resolves the actor for a command: explicit flag, then config, then
// the OS user environment.
func (c *Config) Actor(flag string) string {
	if flag != "" {
		return flag
	}
	if c != nil && c.DefaultActor != "" {
		return c.DefaultActor
	}
	return os.Getenv("USER")
}

// Load reads the workspace config. A missing file yields nil, nil.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the workspace config.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
