// Package main provides the entry point for rollcall-cli.
//
// Usage:
//
//	rollcall-cli student add R1 "Ann Lee"
//	rollcall-cli mark --date 2024-03-01 R1 CS101 P
//	rollcall-cli -o json report roll R1
//	rollcall-cli shell
package main
