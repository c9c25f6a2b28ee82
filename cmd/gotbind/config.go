package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = ".gotbind.toml"

// Config is the CLI configuration read from .gotbind.toml.
type Config struct {
	Repo    string        `toml:"repo"`
	GCEvery int           `toml:"gc_every"`
	Author  AuthorConfig  `toml:"author"`
	Log     LogConfig     `toml:"log"`
	Signing SigningConfig `toml:"signing"`
}

type AuthorConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type SigningConfig struct {
	Key string `toml:"key"`
}

func defaultConfig() Config {
	return Config{
		GCEvery: 64,
		Log:     LogConfig{Level: "warn"},
	}
}

// loadConfig reads path, or .gotbind.toml under dir when path is empty.
// A missing default file yields the defaults; a missing explicit file is
// an error. Unknown keys are rejected.
func loadConfig(path, dir string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, configFileName)
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.GCEvery < 0 {
		return Config{}, fmt.Errorf("load config %s: gc_every must be >= 0", path)
	}
	return cfg, nil
}

// writeConfig stores cfg as TOML at path.
func writeConfig(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
