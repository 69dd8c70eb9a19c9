package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yndnr/rollcall/pkg/lineproto"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// LineClient sends requests over one connection. It is not safe for
// concurrent use; the protocol has no request IDs.
type LineClient struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	r       *bufio.Reader
}

// Dial connects to a rollcall server.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*LineClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &LineClient{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		r:       bufio.NewReader(conn),
	}, nil
}

// Addr returns the server address.
func (c *LineClient) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *LineClient) Close() error {
	return c.conn.Close()
}

// Do sends one request and reads its response. An "ERR:" reply is
// returned as a *lineproto.ServerError.
func (c *LineClient) Do(op lineproto.Opcode, fields ...string) (lineproto.Response, error) {
	line, err := lineproto.FormatRequest(op, fields...)
	if err != nil {
		return lineproto.Response{}, err
	}
	return c.roundTrip(line, op.Streams())
}

// Rows runs a streaming request and returns its rows.
func (c *LineClient) Rows(op lineproto.Opcode, fields ...string) ([][]string, error) {
	resp, err := c.Do(op, fields...)
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// Attend sends a record in the legacy ATT framing.
func (c *LineClient) Attend(roll, code, timestamp string, status []byte) error {
	_, err := c.roundTrip(lineproto.FormatLegacyAttend(roll, code, timestamp, status), false)
	return err
}

// Ping checks that the server answers.
func (c *LineClient) Ping() error {
	_, err := c.Do(lineproto.OpPing)
	return err
}

func (c *LineClient) roundTrip(line string, streaming bool) (lineproto.Response, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return lineproto.Response{}, err
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		return lineproto.Response{}, fmt.Errorf("send: %w", err)
	}
	resp, err := lineproto.ReadResponse(c.r, streaming)
	if err != nil {
		var se *lineproto.ServerError
		if errors.As(err, &se) {
			return resp, err
		}
		return resp, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
