package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/yndnr/rollcall/internal/core/service"
	"github.com/yndnr/rollcall/internal/infra/buildinfo"
	"github.com/yndnr/rollcall/internal/infra/confloader"
	"github.com/yndnr/rollcall/internal/infra/shutdown"
	"github.com/yndnr/rollcall/internal/server/adminserver"
	"github.com/yndnr/rollcall/internal/server/config"
	"github.com/yndnr/rollcall/internal/server/lineserver"
	"github.com/yndnr/rollcall/internal/storage/sqlstore"
	"github.com/yndnr/rollcall/internal/telemetry/logger"
	"github.com/yndnr/rollcall/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		_           = flag.String("addr", config.DefaultLineAddr, "Line protocol listen address")
		_           = flag.String("db", config.DefaultStoragePath, "SQLite database path")
		_           = flag.String("mode", config.DefaultMode, "MARK mode: strict or permissive")
		_           = flag.Bool("legacy-att", false, "Accept ATT|... lines from legacy terminals")
		_           = flag.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String())
		return nil
	}

	cfg, sources, err := loadConfig(*configFile, flagOverrides())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting rollcall-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile,
		"config_sources", sources,
	)

	store, err := sqlstore.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	log.Info("record store opened", "path", cfg.Storage.Path)

	mode, err := service.ParseMode(cfg.Storage.Mode)
	if err != nil {
		store.Close()
		return err
	}
	svc := service.NewRecordService(store, service.Options{
		Mode:        mode,
		DailyUnique: cfg.Storage.DailyUnique,
	})

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewCollector(func(ctx context.Context) (map[string]int64, error) {
		st, err := store.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return st.Counts(), nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh := shutdown.NewHandler(shutdownTimeout, log)
	sh.OnShutdown("store", func(context.Context) error {
		return store.Close()
	})

	lineSrv := lineserver.New(lineConfig(cfg.Server.Line), lineserver.NewDispatcher(svc, metrics), metrics, log)
	lineLn, err := net.Listen("tcp", cfg.Server.Line.Addr)
	if err != nil {
		store.Close()
		return fmt.Errorf("listen %s: %w", cfg.Server.Line.Addr, err)
	}
	go func() {
		if err := lineSrv.Serve(ctx, lineLn); !errors.Is(err, lineserver.ErrServerClosed) {
			log.Error("line server failed", "error", err)
			sh.Trigger()
		}
	}()
	sh.OnShutdown("line", lineSrv.Shutdown)

	if cfg.Server.Admin.Enabled {
		adminLn, err := net.Listen("tcp", cfg.Server.Admin.Addr)
		if err != nil {
			log.Error("admin listen failed", "addr", cfg.Server.Admin.Addr, "error", err)
			sh.Trigger()
		} else {
			adminSrv := adminserver.New(adminserver.NewRouter(adminserver.RouterConfig{
				Store:       store,
				Metrics:     metrics.Handler(),
				ActiveConns: lineSrv.ActiveConns,
				Logger:      log.With("component", "admin"),
			}))
			go func() {
				log.Info("admin server listening", "addr", adminLn.Addr().String())
				if err := adminSrv.Serve(adminLn); err != nil {
					log.Error("admin server failed", "error", err)
					sh.Trigger()
				}
			}()
			sh.OnShutdown("admin", adminSrv.Shutdown)
		}
	}

	if *configFile != "" {
		if err := watchConfig(*configFile, sh, log); err != nil {
			log.Warn("config watch disabled", "error", err)
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, file, environment and flag overrides, then verifies.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, []confloader.Source, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(configFile),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Sources(), nil
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"addr":       "server.line.addr",
	"db":         "storage.path",
	"mode":       "storage.mode",
	"legacy-att": "server.line.legacy_att",
	"log-level":  "log.level",
}

// flagOverrides returns the explicitly set flags keyed by configuration key.
func flagOverrides() map[string]any {
	out := make(map[string]any)
	flag.Visit(func(f *flag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		var value any = f.Value.String()
		if g, ok := f.Value.(flag.Getter); ok {
			value = g.Get()
		}
		out[key] = value
	})
	return out
}

func lineConfig(c config.LineConfig) lineserver.Config {
	return lineserver.Config{
		MaxConns:       c.MaxConns,
		MaxLineLen:     c.MaxLineLen,
		ReadBufferSize: c.ReadBufferSize,
		WriteTimeout:   c.WriteTimeout,
		OutboundQueue:  c.OutboundQueue,
		IdleTimeout:    c.IdleTimeout,
		RateLimit:      c.RateLimit,
		RateBurst:      c.RateBurst,
		LegacyATT:      c.LegacyATT,
	}
}

// watchConfig re-reads the file on change and applies log.level.
func watchConfig(path string, sh *shutdown.Handler, log *slog.Logger) error {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return err
	}

	w.OnChange(func(string) {
		cfg := config.Default()
		if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if !logger.ValidLevel(cfg.Log.Level) {
			log.Warn("config reload ignored unknown log level", "level", cfg.Log.Level)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()

	sh.OnShutdown("config-watcher", func(context.Context) error {
		return w.Stop()
	})
	return nil
}
