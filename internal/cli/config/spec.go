package config

import "time"

// Defaults for a fresh configuration.
const (
	DefaultServer  = "127.0.0.1:5555"
	DefaultOutput  = "table"
	DefaultTimeout = 5 * time.Second
)

// CLIConfig is the configuration for rollcall-cli.
type CLIConfig struct {
	Server  string        `yaml:"server" json:"server"`
	Output  string        `yaml:"output" json:"output"` // table, json, yaml
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Profiles maps short names to server addresses; --server accepts either.
	Profiles map[string]string `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:   DefaultServer,
		Output:   DefaultOutput,
		Timeout:  DefaultTimeout,
		Profiles: make(map[string]string),
	}
}

// ResolveServer maps a profile name to its address. Anything else is
// returned unchanged.
func (c *CLIConfig) ResolveServer(s string) string {
	if addr, ok := c.Profiles[s]; ok {
		return addr
	}
	return s
}
