// Package connection talks to rollcall-server for the CLI.
//
//   - client.go: LineClient, one TCP connection speaking the line protocol
//   - manager.go: Manager, the connection shared by commands in one session
//   - admin.go: AdminClient for the HTTP /health and /ready endpoints
package connection
