// Package repl provides the interactive shell of rollcall-cli.
//
// Each input line is split into arguments and run as a CLI command over
// the same server connection, so a shell session holds one TCP connection
// for its lifetime.
package repl
