package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/artemk/scriba/internal/platform"
)

// Defaults are the user's preferred values for flags they would otherwise
// repeat on every invocation. Flags always win over the config file.
type Defaults struct {
	Model    string `toml:"model"`
	Language string `toml:"language"`
	Device   string `toml:"device"`
	ModelDir string `toml:"model_dir"`
}

type Config struct {
	Defaults Defaults `toml:"defaults"`
}

// Load reads the TOML config at path. An empty path resolves to the default
// location, where a missing file is fine; an explicitly requested file must
// exist. Malformed TOML is always an error.
func Load(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""

	resolved := path
	if !explicit {
		defaultPath, err := platform.ResolveConfigPath()
		if err != nil {
			return Config{}, err
		}
		resolved = defaultPath
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", resolved, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
	}

	return cfg, nil
}
