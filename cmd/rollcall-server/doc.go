// Package main provides the entry point for rollcall-server.
//
// rollcall-server keeps student, course, enrollment and attendance records
// in a SQLite database and serves them over the hex line protocol. An
// optional HTTP admin endpoint exposes /health, /ready and /metrics.
//
// Usage:
//
//	rollcall-server [flags]
//	rollcall-server -config /etc/rollcall/rollcall.yaml
//	rollcall-server -addr 0.0.0.0:5555 -db /var/lib/rollcall/rollcall.db -mode permissive
//
// Settings are read from defaults, the YAML file, ROLLCALL_ environment
// variables and flags, in increasing priority. When a file is given,
// edits to log.level are applied without a restart.
package main
