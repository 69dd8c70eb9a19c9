// Package service provides domain services for rollcall.
//
// Domain services contain the business rules and orchestrate operations on
// domain models. They define interfaces for storage dependencies, allowing
// for dependency injection and testability.
//
// This package contains:
//
//   - RecordService: validation of every command, strict and permissive
//     handling of MARK, and the legacy ATT check-in path
//
// Services are stateless and safe for concurrent use.
package service
