// Package adminserver provides the HTTP admin endpoint of rollcall-server.
//
// Routes:
//
//   - GET /health: process liveness and build information
//   - GET /ready: record store reachability and row counts
//   - GET /metrics: Prometheus exposition
//
// The endpoint carries no authentication and should bind to loopback or a
// management network.
package adminserver
