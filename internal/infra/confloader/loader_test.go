package confloader

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Line struct {
			Addr         string        `koanf:"addr"`
			MaxConns     int           `koanf:"max_conns"`
			WriteTimeout time.Duration `koanf:"write_timeout"`
			LegacyATT    bool          `koanf:"legacy_att"`
		} `koanf:"line"`
	} `koanf:"server"`
	Storage struct {
		Path        string `koanf:"path"`
		Mode        string `koanf:"mode"`
		DailyUnique bool   `koanf:"daily_unique"`
	} `koanf:"storage"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func defaults() testConfig {
	var cfg testConfig
	cfg.Server.Line.Addr = "127.0.0.1:5555"
	cfg.Server.Line.MaxConns = 128
	cfg.Storage.Path = "data/rollcall.db"
	cfg.Storage.Mode = "strict"
	cfg.Storage.DailyUnique = true
	cfg.Log.Level = "info"
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rollcall.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg := defaults()
	l := NewLoader()
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != defaults() {
		t.Errorf("cfg = %+v, want defaults untouched", cfg)
	}
	if got := l.Sources(); !reflect.DeepEqual(got, []Source{SourceDefaults}) {
		t.Errorf("Sources() = %v", got)
	}
	if len(l.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none", l.Keys())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  line:
    addr: "0.0.0.0:5555"
    write_timeout: "2s"
    legacy_att: true
storage:
  mode: permissive
`)

	cfg := defaults()
	l := NewLoader(WithConfigFile(path))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Line.Addr != "0.0.0.0:5555" || !cfg.Server.Line.LegacyATT {
		t.Errorf("line = %+v", cfg.Server.Line)
	}
	if cfg.Server.Line.WriteTimeout != 2*time.Second {
		t.Errorf("WriteTimeout = %v, want 2s", cfg.Server.Line.WriteTimeout)
	}
	if cfg.Storage.Mode != "permissive" {
		t.Errorf("Mode = %q, want permissive", cfg.Storage.Mode)
	}
	// Keys the file leaves out keep their defaults.
	if cfg.Server.Line.MaxConns != 128 || cfg.Storage.Path != "data/rollcall.db" || !cfg.Storage.DailyUnique {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if got := l.Sources(); !reflect.DeepEqual(got, []Source{SourceDefaults, SourceFile}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoad_FileErrors(t *testing.T) {
	cfg := defaults()
	if err := NewLoader(WithConfigFile("/nonexistent/rollcall.yaml")).Load(&cfg); err == nil {
		t.Error("Load() should fail for a missing file")
	}

	path := writeConfig(t, "server: [unclosed\n")
	if err := NewLoader(WithConfigFile(path)).Load(&cfg); err == nil {
		t.Error("Load() should fail for invalid YAML")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ROLLCALL_SERVER__LINE__MAX_CONNS", "64")
	t.Setenv("ROLLCALL_STORAGE__DAILY_UNIQUE", "false")

	cfg := defaults()
	l := NewLoader()
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Line.MaxConns != 64 {
		t.Errorf("MaxConns = %d, want 64", cfg.Server.Line.MaxConns)
	}
	if cfg.Storage.DailyUnique {
		t.Error("DailyUnique should be false")
	}
	if got := l.Sources(); !reflect.DeepEqual(got, []Source{SourceDefaults, SourceEnv}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoad_IgnoresFlatCLIVariables(t *testing.T) {
	// The CLI reads these; they must not clobber the server section.
	t.Setenv("ROLLCALL_SERVER", "10.0.0.1:5555")
	t.Setenv("ROLLCALL_OUTPUT", "json")

	cfg := defaults()
	l := NewLoader()
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != defaults() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if got := l.Sources(); !reflect.DeepEqual(got, []Source{SourceDefaults}) {
		t.Errorf("Sources() = %v", got)
	}
}

func TestLoad_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_STORAGE__PATH", "/tmp/x.db")
	t.Setenv("ROLLCALL_STORAGE__MODE", "permissive")

	cfg := defaults()
	if err := NewLoader(WithEnvPrefix("MYAPP_")).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Path != "/tmp/x.db" {
		t.Errorf("Path = %q, want /tmp/x.db", cfg.Storage.Path)
	}
	if cfg.Storage.Mode != "strict" {
		t.Errorf("Mode = %q, other prefixes must be ignored", cfg.Storage.Mode)
	}
}

func TestLoad_Priority(t *testing.T) {
	path := writeConfig(t, `
server:
  line:
    addr: "from-file:5555"
    max_conns: 16
log:
  level: warn
`)
	t.Setenv("ROLLCALL_SERVER__LINE__ADDR", "from-env:5556")
	t.Setenv("ROLLCALL_LOG__LEVEL", "error")

	cfg := defaults()
	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"log.level": "debug"}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Line.Addr != "from-env:5556" {
		t.Errorf("Addr = %q, env should override file", cfg.Server.Line.Addr)
	}
	if cfg.Server.Line.MaxConns != 16 {
		t.Errorf("MaxConns = %d, file value should survive", cfg.Server.Line.MaxConns)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, overrides should win", cfg.Log.Level)
	}

	want := []Source{SourceDefaults, SourceFile, SourceEnv, SourceFlags}
	if got := l.Sources(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sources() = %v, want %v", got, want)
	}

	keys := l.Keys()
	sort.Strings(keys)
	wantKeys := []string{"log.level", "server.line.addr", "server.line.max_conns"}
	if !reflect.DeepEqual(keys, wantKeys) {
		t.Errorf("Keys() = %v, want %v", keys, wantKeys)
	}
}

func TestLoad_OverridesTyped(t *testing.T) {
	cfg := defaults()
	l := NewLoader(WithOverrides(map[string]any{
		"server.line.legacy_att": true,
		"storage.path":           "/srv/rollcall.db",
	}))
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Server.Line.LegacyATT || cfg.Storage.Path != "/srv/rollcall.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Line.Addr != "127.0.0.1:5555" {
		t.Errorf("Addr = %q, sibling keys should keep defaults", cfg.Server.Line.Addr)
	}
}

func TestLoad_Reusable(t *testing.T) {
	path := writeConfig(t, "log:\n  level: warn\n")
	l := NewLoader(WithConfigFile(path))

	first := defaults()
	if err := l.Load(&first); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("storage:\n  mode: permissive\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second := defaults()
	if err := l.Load(&second); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Log.Level != "info" {
		t.Errorf("Level = %q, a removed key must not linger between loads", second.Log.Level)
	}
	if second.Storage.Mode != "permissive" {
		t.Errorf("Mode = %q, want permissive", second.Storage.Mode)
	}
}

func TestEnvKey(t *testing.T) {
	l := NewLoader()
	tests := map[string]string{
		"ROLLCALL_LOG__LEVEL":                 "log.level",
		"ROLLCALL_STORAGE__DAILY_UNIQUE":      "storage.daily_unique",
		"ROLLCALL_SERVER__LINE__MAX_LINE_LEN": "server.line.max_line_len",
		"ROLLCALL_SERVER__ADMIN__ENABLED":     "server.admin.enabled",
		"ROLLCALL_SERVER":                     "",
		"ROLLCALL_CLI_CONFIG":                 "",
	}
	for in, want := range tests {
		if got := l.envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}
