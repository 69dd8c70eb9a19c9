package config

import "time"

// Default configuration values.
const (
	DefaultLineAddr       = "127.0.0.1:5555"
	DefaultMaxConns       = 128
	DefaultMaxLineLen     = 2048
	DefaultReadBufferSize = 1024
	DefaultWriteTimeout   = 5 * time.Second
	DefaultOutboundQueue  = 64
	DefaultRateBurst      = 20

	DefaultAdminAddr = "127.0.0.1:5580"

	DefaultStoragePath = "data/rollcall.db"
	DefaultMode        = "strict"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Line: LineConfig{
				Addr:           DefaultLineAddr,
				MaxConns:       DefaultMaxConns,
				MaxLineLen:     DefaultMaxLineLen,
				ReadBufferSize: DefaultReadBufferSize,
				WriteTimeout:   DefaultWriteTimeout,
				OutboundQueue:  DefaultOutboundQueue,
				RateBurst:      DefaultRateBurst,
			},
			Admin: AdminConfig{
				Enabled: true,
				Addr:    DefaultAdminAddr,
			},
		},
		Storage: StorageSection{
			Path:        DefaultStoragePath,
			Mode:        DefaultMode,
			DailyUnique: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
