package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "ROLLCALL_"

// envLevelSeparator separates nesting levels in environment variable names.
// A single underscore stays part of the key (max_conns).
const envLevelSeparator = "__"

// Source names one configuration layer.
type Source string

// Layers in increasing priority.
const (
	SourceDefaults Source = "defaults"
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceFlags    Source = "flags"
)

// Loader layers configuration sources over the defaults held by a target
// struct. A Loader can be reused; every Load starts from scratch.
type Loader struct {
	envPrefix string
	filePath  string
	overrides map[string]any

	sources []Source
	keys    []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the YAML file to read. Empty means no file.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets the highest priority values, keyed by dotted path
// (server.line.addr). Command-line flags arrive this way.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		l.overrides = values
	}
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes file, environment and overrides, in that order, into target.
// Keys no source sets keep the value target already had.
func (l *Loader) Load(target any) error {
	k := koanf.New(".")
	l.sources = []Source{SourceDefaults}

	if l.filePath != "" {
		if err := k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", l.filePath, err)
		}
		l.sources = append(l.sources, SourceFile)
	}

	ek := koanf.New(".")
	if err := ek.Load(env.Provider(l.envPrefix, ".", l.envKey), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if len(ek.Keys()) > 0 {
		if err := k.Merge(ek); err != nil {
			return fmt.Errorf("merge env: %w", err)
		}
		l.sources = append(l.sources, SourceEnv)
	}

	if len(l.overrides) > 0 {
		nested := maps.Unflatten(l.overrides, ".")
		if err := k.Load(mapProvider(nested), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
		l.sources = append(l.sources, SourceFlags)
	}

	if err := k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	l.keys = k.Keys()
	return nil
}

// envKey maps an environment variable name to a koanf key. Names without a
// level separator are skipped: every server setting lives in a section, and
// flat ROLLCALL_ variables (ROLLCALL_SERVER, ROLLCALL_OUTPUT) belong to the CLI.
func (l *Loader) envKey(name string) string {
	name = strings.TrimPrefix(name, l.envPrefix)
	if !strings.Contains(name, envLevelSeparator) {
		return ""
	}
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, envLevelSeparator, ".")
}

// Sources lists the layers that contributed to the last Load.
func (l *Loader) Sources() []Source {
	return append([]Source(nil), l.sources...)
}

// Keys lists the keys set by the last Load, defaults excluded.
func (l *Loader) Keys() []string {
	return append([]string(nil), l.keys...)
}
