// Package domain defines the core domain models for rollcall.
//
// Domain models are plain values without IO dependencies:
//
//   - Student, Course, Enrollment: the keyed entities
//   - AttendanceRecord, AttendanceEntry, StatusCount: marks and report rows
//   - Status: the closed set of attendance statuses and its legacy decoding
//   - Errors: DomainError values whose codes are sent to clients as "ERR:<code>"
package domain
