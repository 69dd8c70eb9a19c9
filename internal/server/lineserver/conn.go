package lineserver

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// readEvent carries one chunk from a connection reader to the loop.
// err is set on EOF or a read failure, possibly together with data.
type readEvent struct {
	id   string
	data []byte
	err  error
}

// closeEvent asks the loop to drop a connection.
type closeEvent struct {
	id     string
	reason string
}

// conn is the loop-owned state of one client connection.
type conn struct {
	id     string
	nc     net.Conn
	ip     string
	log    *slog.Logger
	ctx    context.Context
	buf    []byte
	active time.Time

	// out feeds the writer. Only the loop sends on it or closes it.
	out chan []byte

	// done is closed by the loop when the connection is deregistered.
	done chan struct{}
}

// readLoop moves bytes from the socket to the loop. Each chunk is handed
// over synchronously, so a connection never has more than one chunk
// waiting for the loop.
func (c *conn) readLoop(size int, events chan<- readEvent, quit <-chan struct{}) {
	for {
		chunk := make([]byte, size)
		n, err := c.nc.Read(chunk)
		ev := readEvent{id: c.id, data: chunk[:n], err: err}

		select {
		case events <- ev:
		case <-c.done:
			return
		case <-quit:
			return
		}
		if err != nil {
			return
		}
	}
}

// nextLine removes and returns the first complete line in the buffer,
// without its terminator.
func (c *conn) nextLine() (string, bool) {
	for i, b := range c.buf {
		if b != '\n' {
			continue
		}
		line := string(c.buf[:i])
		n := copy(c.buf, c.buf[i+1:])
		c.buf = c.buf[:n]
		return line, true
	}
	return "", false
}

// enqueue hands a response to the writer without blocking. It reports false
// when the queue is full.
func (c *conn) enqueue(b []byte) bool {
	select {
	case c.out <- b:
		return true
	default:
		return false
	}
}

// writeLoop sends queued responses until out is closed, then closes the
// socket. A failed write is reported to the loop and ends the connection.
// Once the connection is deregistered the remaining responses get one
// timeout in total.
func (c *conn) writeLoop(timeout time.Duration, closes chan<- closeEvent, quit <-chan struct{}) {
	defer c.nc.Close()
	var drainBy time.Time
	for b := range c.out {
		deadline := time.Now().Add(timeout)
		select {
		case <-c.done:
			if drainBy.IsZero() {
				drainBy = deadline
			}
			deadline = drainBy
		default:
		}
		if err := c.write(b, deadline); err != nil {
			c.log.Debug("write failed", "error", err)
			select {
			case closes <- closeEvent{id: c.id, reason: reasonWriteError}:
			case <-c.done:
			case <-quit:
			}
			return
		}
	}
}

func (c *conn) write(b []byte, deadline time.Time) error {
	if err := c.nc.SetWriteDeadline(deadline); err != nil {
		return err
	}
	_, err := c.nc.Write(b)
	return err
}
