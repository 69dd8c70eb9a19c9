package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rollcall", "cli.yaml")
}

// Load loads CLI configuration from file. A missing file yields defaults.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]string)
	}
	return cfg, nil
}

// Save writes the configuration with owner-only permissions.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Set updates one key: server, output, timeout or profile.<name>.
// An empty value removes a profile.
func (c *CLIConfig) Set(key, value string) error {
	switch {
	case key == "server":
		if value == "" {
			return errors.New("server must not be empty")
		}
		c.Server = value
	case key == "output":
		switch value {
		case "table", "json", "yaml":
			c.Output = value
		default:
			return fmt.Errorf("unknown output format %q", value)
		}
	case key == "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q", value)
		}
		c.Timeout = d
	case strings.HasPrefix(key, "profile."):
		name := strings.TrimPrefix(key, "profile.")
		if name == "" {
			return errors.New("profile name is required")
		}
		if c.Profiles == nil {
			c.Profiles = make(map[string]string)
		}
		if value == "" {
			delete(c.Profiles, name)
		} else {
			c.Profiles[name] = value
		}
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
