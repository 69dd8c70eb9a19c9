// Package command defines the rollcall-cli commands using urfave/cli/v2:
//
//   - root.go: App, global flags and per-run state
//   - records.go: student, course, enroll, mark, attend
//   - reports.go: list, report and summary commands
//   - system.go: ping, status, version
//   - config.go: local CLI configuration
//   - shell.go: interactive mode over one connection
//
// Commands parse arguments, send one request through the shared
// connection manager and render the result with internal/cli/output.
package command
