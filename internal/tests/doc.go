// Package tests holds integration tests that run the line server, the
// admin endpoint and the CLI client together against one database.
package tests
