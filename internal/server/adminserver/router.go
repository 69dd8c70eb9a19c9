package adminserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/rollcall/internal/infra/buildinfo"
	"github.com/yndnr/rollcall/internal/storage/sqlstore"
)

// Store is what the readiness probe needs from the record store.
type Store interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (sqlstore.Stats, error)
}

// RouterConfig holds the dependencies of the admin routes.
type RouterConfig struct {
	Store Store

	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler

	// ActiveConns reports open line connections. Optional.
	ActiveConns func() int

	// ReadyTimeout bounds the store probe. Default 2s.
	ReadyTimeout time.Duration

	Logger *slog.Logger
}

// NewRouter builds the admin routes.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}
	h := &handler{cfg: cfg, started: time.Now()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /ready", h.handleReady)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	return Chain(mux,
		RequestID(),
		Recover(cfg.Logger),
		AccessLog(cfg.Logger),
	)
}

type handler struct {
	cfg     RouterConfig
	started time.Time
}

type healthResponse struct {
	Status string         `json:"status"`
	Time   string         `json:"time"`
	Uptime string         `json:"uptime"`
	Build  buildinfo.Info `json:"build"`
}

type readyResponse struct {
	Status      string          `json:"status"`
	Error       string          `json:"error,omitempty"`
	Store       *sqlstore.Stats `json:"store,omitempty"`
	Connections *int            `json:"connections,omitempty"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
		Uptime: time.Since(h.started).Round(time.Second).String(),
		Build:  buildinfo.Get(),
	})
}

func (h *handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store == nil {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Error: "store not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ReadyTimeout)
	defer cancel()

	if err := h.cfg.Store.Ping(ctx); err != nil {
		h.cfg.Logger.Warn("readiness probe failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	stats, err := h.cfg.Store.Stats(ctx)
	if err != nil {
		h.cfg.Logger.Warn("readiness probe failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Status: "unavailable", Error: err.Error()})
		return
	}

	resp := readyResponse{Status: "ready", Store: &stats}
	if h.cfg.ActiveConns != nil {
		n := h.cfg.ActiveConns()
		resp.Connections = &n
	}
	writeJSON(w, http.StatusOK, resp)
}
