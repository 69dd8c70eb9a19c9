// Package sqlstore provides the SQLite-backed record store for rollcall.
//
// The store owns students, courses, enrollments and attendance records and
// enforces their constraints:
//
//   - roll and code are unique keys (DuplicateKey on conflict)
//   - enrollments and attendance reference existing rows (foreign keys ON)
//   - at most one record per (student, course, day) when the mark policy asks for it
//
// Every write runs in a single transaction. Transactions are opened with
// BEGIN IMMEDIATE so the write lock is held from the first statement, and
// either all derived effects of a mark (implicit student, course, enrollment
// and the record itself) commit or none do.
//
// # Database Configuration
//
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - one open connection
package sqlstore
