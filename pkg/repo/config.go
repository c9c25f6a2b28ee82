package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gotbind/pkg/object"
)

// Config stores repository-local settings.
type Config struct {
	User UserConfig `json:"user"`
}

// UserConfig is the default identity for commits and reflog entries.
type UserConfig struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GotDir, "config.json")
}

// ReadConfig reads .got/config.json. Missing config returns an empty config.
func (r *Repo) ReadConfig() (*Config, error) {
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes .got/config.json.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GotDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// DefaultSignature builds a signature for "now" from the configured user.
func (r *Repo) DefaultSignature() (object.Signature, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Signature{}, err
	}
	name := strings.TrimSpace(cfg.User.Name)
	email := strings.TrimSpace(cfg.User.Email)
	if name == "" || email == "" {
		return object.Signature{}, fmt.Errorf("default signature: user.name and user.email must be configured")
	}
	now := time.Now()
	_, off := now.Zone()
	return object.Signature{Name: name, Email: email, When: now.Unix(), Offset: off / 60}, nil
}
