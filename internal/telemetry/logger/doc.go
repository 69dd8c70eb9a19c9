// Package logger provides structured logging for rollcall.
//
// It configures log/slog handlers:
//
//   - logger.go: handler construction and the shared runtime level
//   - context.go: context propagation of the logger and connection ID
//   - sanitize.go: quoting and truncation of client-supplied values
//
// Features:
//
//   - JSON and text output formats
//   - Log level changes at runtime (config reload)
//   - Connection-scoped loggers for the line server
package logger
