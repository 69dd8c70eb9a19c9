// Package lineserver serves the hex line protocol over TCP.
//
// One event loop goroutine owns every connection. Per-connection reader
// goroutines only move bytes off the socket, and per-connection writers
// drain a bounded queue of rendered responses. Line framing and dispatch to
// the record service happen on the loop, so commands from all clients are
// applied one at a time in arrival order. A client that stops reading is
// disconnected once its queue fills.
//
// Files:
//
//   - server.go: Server, Serve and Shutdown, the event loop
//   - conn.go: per-connection state, the bounded reader and the queued writer
//   - dispatch.go: Command to Response mapping
//   - limiter.go: per-IP command rate limit
package lineserver
