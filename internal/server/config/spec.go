package config

import "time"

// ServerConfig is the root configuration for rollcall-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Line  LineConfig  `koanf:"line"`
	Admin AdminConfig `koanf:"admin"`
}

// LineConfig configures the line protocol server.
type LineConfig struct {
	Addr string `koanf:"addr"`

	// MaxConns bounds concurrent connections. 0 means unbounded.
	MaxConns int `koanf:"max_conns"`

	// MaxLineLen is the longest request line accepted, terminator excluded.
	MaxLineLen int `koanf:"max_line_len"`

	// ReadBufferSize is the size of one bounded read.
	ReadBufferSize int `koanf:"read_buffer_size"`

	WriteTimeout time.Duration `koanf:"write_timeout"`

	// OutboundQueue is how many responses may wait for a slow reader
	// before its connection is dropped.
	OutboundQueue int `koanf:"outbound_queue"`

	// IdleTimeout closes silent connections. 0 disables eviction.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per client IP. 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// LegacyATT accepts the ATT|... framing of the old terminal clients.
	LegacyATT bool `koanf:"legacy_att"`
}

// AdminConfig configures the HTTP admin endpoint (/health, /ready, /metrics).
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the record store.
type StorageSection struct {
	// Path is the SQLite database file.
	Path string `koanf:"path"`

	// Mode is "strict" or "permissive"; see service.Mode.
	Mode string `koanf:"mode"`

	// DailyUnique allows one record per (student, course, day).
	DailyUnique bool `koanf:"daily_unique"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
