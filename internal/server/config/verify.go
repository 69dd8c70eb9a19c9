package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/yndnr/rollcall/internal/core/service"
	"github.com/yndnr/rollcall/internal/telemetry/logger"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	line := &cfg.Line
	if err := verifyAddr("server.line.addr", line.Addr); err != nil {
		return err
	}
	if line.MaxConns < 0 {
		return errors.New("server.line.max_conns must not be negative")
	}
	if line.MaxLineLen < 1 {
		return errors.New("server.line.max_line_len must be at least 1")
	}
	if line.ReadBufferSize < 1 {
		return errors.New("server.line.read_buffer_size must be at least 1")
	}
	if line.WriteTimeout <= 0 {
		return errors.New("server.line.write_timeout must be positive")
	}
	if line.OutboundQueue < 1 {
		return errors.New("server.line.outbound_queue must be at least 1")
	}
	if line.IdleTimeout < 0 {
		return errors.New("server.line.idle_timeout must not be negative")
	}
	if line.RateLimit < 0 {
		return errors.New("server.line.rate_limit must not be negative")
	}
	if line.RateLimit > 0 && line.RateBurst < 1 {
		return errors.New("server.line.rate_burst must be at least 1 when rate_limit is set")
	}

	if cfg.Admin.Enabled {
		if err := verifyAddr("server.admin.addr", cfg.Admin.Addr); err != nil {
			return err
		}
		if cfg.Admin.Addr == line.Addr {
			return errors.New("server.admin.addr conflicts with server.line.addr")
		}
	}
	return nil
}

func verifyAddr(key, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", key)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if cfg.Path == "" {
		return errors.New("storage.path is required")
	}
	if _, err := service.ParseMode(cfg.Mode); err != nil {
		return fmt.Errorf("storage.mode: %w", err)
	}

	// Check if the database directory exists or can be created
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
		return errors.New("cannot create storage directory: " + err.Error())
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if cfg.Level != "" && !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch cfg.Format {
	case "", "json", "text", "console":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
