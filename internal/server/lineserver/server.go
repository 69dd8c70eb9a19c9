package lineserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/rollcall/internal/telemetry/logger"
	"github.com/yndnr/rollcall/internal/telemetry/metric"
	"github.com/yndnr/rollcall/pkg/lineproto"
)

// ErrServerClosed is returned by Serve after Shutdown or context cancellation.
var ErrServerClosed = errors.New("lineserver: server closed")

// Connection close reasons, used in logs and the rejected metric.
const (
	reasonFull        = "server_full"
	reasonLineTooLong = "line_too_long"
	reasonIdle        = "idle"
	reasonEOF         = "eof"
	reasonReadError   = "read_error"
	reasonWriteError  = "write_error"
	reasonBacklog     = "backlog"
	reasonShutdown    = "shutdown"
)

// Config holds the line server configuration.
type Config struct {
	// MaxConns bounds registered connections. 0 means unbounded.
	MaxConns int
	// MaxLineLen is the longest accepted line, terminator excluded.
	MaxLineLen int
	// ReadBufferSize is the size of one bounded read.
	ReadBufferSize int
	WriteTimeout   time.Duration
	// OutboundQueue bounds responses waiting to be written per connection.
	// A client that lets it fill up is disconnected.
	OutboundQueue int
	// IdleTimeout closes silent connections. 0 disables it.
	IdleTimeout time.Duration
	// RateLimit is commands per second per client IP. 0 disables it.
	RateLimit float64
	RateBurst int
	// LegacyATT accepts ATT|... lines.
	LegacyATT bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConns:       128,
		MaxLineLen:     2048,
		ReadBufferSize: 1024,
		WriteTimeout:   5 * time.Second,
		OutboundQueue:  64,
	}
}

// Server is the line protocol server.
type Server struct {
	cfg     Config
	disp    *Dispatcher
	metrics *metric.Registry
	logger  *slog.Logger

	accepts chan net.Conn
	reads   chan readEvent
	closes  chan closeEvent

	mu       sync.Mutex
	ln       net.Listener
	serving  bool
	quit     chan struct{}
	quitOnce sync.Once
	loopDone chan struct{}

	wg     sync.WaitGroup
	active atomic.Int64

	// Owned by the event loop.
	conns   map[string]*conn
	limiter *ipLimiter
}

// New creates a line server. metrics may be nil.
func New(cfg Config, disp *Dispatcher, metrics *metric.Registry, log *slog.Logger) *Server {
	def := DefaultConfig()
	if cfg.MaxLineLen <= 0 {
		cfg.MaxLineLen = def.MaxLineLen
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = def.ReadBufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.OutboundQueue <= 0 {
		cfg.OutboundQueue = def.OutboundQueue
	}
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		disp:     disp,
		metrics:  metrics,
		logger:   log.With("component", "line"),
		accepts:  make(chan net.Conn),
		reads:    make(chan readEvent),
		closes:   make(chan closeEvent),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		conns:    make(map[string]*conn),
		limiter:  newIPLimiter(cfg.RateLimit, cfg.RateBurst),
	}
}

// Serve accepts connections on ln and runs the event loop until Shutdown
// is called or ctx ends. It always returns a non-nil error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.serving {
		s.mu.Unlock()
		return errors.New("lineserver: Serve called twice")
	}
	select {
	case <-s.quit:
		s.mu.Unlock()
		return ErrServerClosed
	default:
	}
	s.serving = true
	s.ln = ln
	s.mu.Unlock()
	defer close(s.loopDone)

	s.logger.Info("line server listening",
		"addr", ln.Addr().String(),
		"max_conns", s.cfg.MaxConns,
		"legacy_att", s.cfg.LegacyATT,
	)

	s.wg.Add(1)
	go s.acceptLoop(ln)

	return s.loop(ctx)
}

// Shutdown stops accepting, closes every connection and waits for the
// server goroutines to exit or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stop()

	s.mu.Lock()
	serving := s.serving
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if serving {
			<-s.loopDone
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("line server stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConns returns the number of registered connections.
func (s *Server) ActiveConns() int {
	return int(s.active.Load())
}

func (s *Server) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quitOnce.Do(func() {
		close(s.quit)
		if s.ln != nil {
			_ = s.ln.Close()
		}
	})
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()

	var backoff time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Error("accept failed", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-s.quit:
				return
			}
			continue
		}
		backoff = 0

		select {
		case s.accepts <- nc:
		case <-s.quit:
			_ = nc.Close()
			return
		}
	}
}

// loop is the only goroutine that touches s.conns and s.limiter.
func (s *Server) loop(ctx context.Context) error {
	var idle <-chan time.Time
	if s.cfg.IdleTimeout > 0 {
		interval := s.cfg.IdleTimeout / 2
		if interval < 10*time.Millisecond {
			interval = 10 * time.Millisecond
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		idle = t.C
	}

	for {
		select {
		case nc := <-s.accepts:
			s.register(ctx, nc)
		case ev := <-s.reads:
			s.handleRead(ev)
		case ev := <-s.closes:
			if c, ok := s.conns[ev.id]; ok {
				s.closeConn(c, ev.reason)
			}
		case now := <-idle:
			s.evictIdle(now)
		case <-ctx.Done():
			s.stop()
			s.closeAll()
			return ErrServerClosed
		case <-s.quit:
			s.closeAll()
			return ErrServerClosed
		}
	}
}

func (s *Server) register(ctx context.Context, nc net.Conn) {
	if s.cfg.MaxConns > 0 && len(s.conns) >= s.cfg.MaxConns {
		s.logger.Warn("connection refused", "remote", nc.RemoteAddr().String(), "reason", reasonFull)
		_ = nc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		_, _ = nc.Write(lineproto.Err(lineproto.CodeServerFull).Render())
		_ = nc.Close()
		s.rejected(reasonFull)
		return
	}

	id := ulid.Make().String()
	remote := nc.RemoteAddr().String()
	base := s.logger.With("remote", remote)
	c := &conn{
		id:     id,
		nc:     nc,
		ip:     hostOf(nc.RemoteAddr()),
		log:    base.With("conn_id", id),
		ctx:    logger.WithConnID(logger.WithLogger(ctx, base), id),
		active: time.Now(),
		out:    make(chan []byte, s.cfg.OutboundQueue),
		done:   make(chan struct{}),
	}
	s.conns[id] = c
	s.limiter.attach(c.ip)
	s.active.Add(1)
	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}
	c.log.Debug("connection opened")

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		c.readLoop(s.cfg.ReadBufferSize, s.reads, s.quit)
	}()
	go func() {
		defer s.wg.Done()
		c.writeLoop(s.cfg.WriteTimeout, s.closes, s.quit)
	}()
}

func (s *Server) handleRead(ev readEvent) {
	c, ok := s.conns[ev.id]
	if !ok {
		return
	}

	if len(ev.data) > 0 {
		c.active = time.Now()
		c.buf = append(c.buf, ev.data...)
		if !s.drain(c) {
			return
		}
	}

	if ev.err != nil {
		reason := reasonEOF
		if !errors.Is(ev.err, io.EOF) {
			reason = reasonReadError
			c.log.Debug("read failed", "error", ev.err)
		}
		s.closeConn(c, reason)
	}
}

// drain answers every complete line in the buffer. It returns false when
// the connection was closed.
func (s *Server) drain(c *conn) bool {
	for {
		line, ok := c.nextLine()
		if !ok {
			break
		}
		line = strings.TrimSuffix(line, "\r")
		if len(line) > s.cfg.MaxLineLen {
			s.fail(c, lineproto.CodeLineTooLong, reasonLineTooLong)
			return false
		}
		if !s.serveLine(c, line) {
			return false
		}
	}

	if len(c.buf) > s.cfg.MaxLineLen {
		s.fail(c, lineproto.CodeLineTooLong, reasonLineTooLong)
		return false
	}
	return true
}

func (s *Server) serveLine(c *conn, line string) bool {
	var resp lineproto.Response
	if s.limiter.allow(c.ip) {
		resp = s.handleLine(c, line)
	} else {
		resp = lineproto.Err(lineproto.CodeRateLimited)
	}

	if !c.enqueue(resp.Render()) {
		c.log.Warn("closing connection", "reason", reasonBacklog)
		s.rejected(reasonBacklog)
		s.closeConn(c, reasonBacklog)
		return false
	}
	return true
}

func (s *Server) handleLine(c *conn, line string) lineproto.Response {
	legacy := s.cfg.LegacyATT && lineproto.IsLegacy(line)

	var (
		cmd lineproto.Command
		err error
	)
	if legacy {
		cmd, err = lineproto.ParseLegacy(line)
	} else {
		cmd, err = lineproto.Parse(line)
	}
	if err != nil {
		code := lineproto.CodeBadPayload
		var pe *lineproto.ProtocolError
		if errors.As(err, &pe) {
			code = pe.Code
		}
		c.log.Debug("bad request", "code", code, "line", line)
		resp := lineproto.Err(code)
		if legacy {
			resp = resp.AsLegacy()
		}
		return resp
	}

	return s.disp.Dispatch(c.ctx, cmd)
}

// fail queues a final error and closes the connection once it is written.
func (s *Server) fail(c *conn, code, reason string) {
	c.log.Warn("closing connection", "reason", reason)
	c.enqueue(lineproto.Err(code).Render())
	s.rejected(reason)
	s.closeConn(c, reason)
}

func (s *Server) evictIdle(now time.Time) {
	for _, c := range s.conns {
		if now.Sub(c.active) >= s.cfg.IdleTimeout {
			s.rejected(reasonIdle)
			s.closeConn(c, reasonIdle)
		}
	}
}

func (s *Server) closeAll() {
	for _, c := range s.conns {
		s.closeConn(c, reasonShutdown)
	}
}

// closeConn deregisters c. Queued responses are still flushed by the writer,
// except when the peer is not reading or the server is going away.
func (s *Server) closeConn(c *conn, reason string) {
	if _, ok := s.conns[c.id]; !ok {
		return
	}
	delete(s.conns, c.id)
	close(c.done)
	close(c.out)
	switch reason {
	case reasonBacklog, reasonWriteError, reasonShutdown:
		_ = c.nc.Close()
	}
	s.limiter.detach(c.ip)
	s.active.Add(-1)
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
	c.log.Debug("connection closed", "reason", reason)
}

func (s *Server) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.ConnectionsRejected.WithLabelValues(reason).Inc()
	}
}
