package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/yndnr/rollcall/pkg/lineproto"
)

// Manager holds the connection shared by the commands of one CLI session.
// It dials lazily and redials once after a broken connection.
type Manager struct {
	addr    string
	timeout time.Duration
	client  *LineClient
}

// NewManager creates a manager for addr.
func NewManager(addr string, timeout time.Duration) *Manager {
	return &Manager{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	return m.addr
}

// SetAddr switches to another server, closing the current connection.
func (m *Manager) SetAddr(addr string) {
	if addr == m.addr {
		return
	}
	m.Disconnect()
	m.addr = addr
}

// Client returns the current connection, dialing if needed.
func (m *Manager) Client(ctx context.Context) (*LineClient, error) {
	if m.client != nil {
		return m.client, nil
	}
	c, err := Dial(ctx, m.addr, m.timeout)
	if err != nil {
		return nil, err
	}
	m.client = c
	return c, nil
}

// Do runs one request. A transport failure drops the connection and the
// request is retried once on a fresh one.
func (m *Manager) Do(ctx context.Context, op lineproto.Opcode, fields ...string) (lineproto.Response, error) {
	resp, err := m.do(ctx, op, fields)
	if errors.Is(err, lineproto.ErrUnexpectedReply) {
		m.Disconnect()
		return resp, err
	}
	if err == nil || !isTransport(err) {
		return resp, err
	}
	m.Disconnect()
	return m.do(ctx, op, fields)
}

func (m *Manager) do(ctx context.Context, op lineproto.Opcode, fields []string) (lineproto.Response, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return lineproto.Response{}, err
	}
	return c.Do(op, fields...)
}

// Disconnect closes the current connection, if any.
func (m *Manager) Disconnect() {
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
}

// IsConnected reports whether a connection is open.
func (m *Manager) IsConnected() bool {
	return m.client != nil
}

func isTransport(err error) bool {
	var se *lineproto.ServerError
	var pe *lineproto.ProtocolError
	if errors.As(err, &se) || errors.As(err, &pe) {
		return false
	}
	var ne net.Error
	switch {
	case errors.As(err, &ne), errors.Is(err, net.ErrClosed):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return true
	}
	return errors.Is(err, lineproto.ErrMissingSentinel)
}
