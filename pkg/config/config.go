// Package config loads the optional vaultkeep.yaml file that overrides
// the CLI's defaults for the store path, tree-walk exclusions, and the
// progress event interval.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/vaultkeep/pkg/vkerrors"
)

const (
	defaultStorePath        = "./backup.db"
	defaultProgressInterval = 100
	defaultConfigFileName   = "vaultkeep.yaml"
)

// Config is the parsed contents of vaultkeep.yaml.
type Config struct {
	Store            string   `yaml:"store"`
	Exclude          []string `yaml:"exclude"`
	ProgressInterval int      `yaml:"progress_interval"`
}

// Default returns a Config populated with vaultkeep's built-in defaults.
func Default() Config {
	return Config{
		Store:            defaultStorePath,
		ProgressInterval: defaultProgressInterval,
	}
}

// Load reads path if non-empty, else falls back to ./vaultkeep.yaml if it
// exists, else returns Default(). Fields absent from the file keep their
// default value.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(defaultConfigFileName); err != nil {
			return cfg, nil
		}
		path = defaultConfigFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, vkerrors.Wrap(vkerrors.KindReadFailed, path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, vkerrors.Wrap(vkerrors.KindInvalidInput, "parse "+path, err)
	}

	if cfg.Store == "" {
		cfg.Store = defaultStorePath
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}

	return cfg, nil
}
