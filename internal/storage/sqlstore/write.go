package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yndnr/rollcall/internal/core/domain"
)

// txn bundles the statements that make up multi-step writes.
type txn struct {
	tx  *sql.Tx
	now time.Time
}

// CreateStudent inserts a student. An existing roll fails with DuplicateKey.
func (s *Store) CreateStudent(ctx context.Context, st *domain.Student) error {
	return s.withTx(ctx, "create student", func(t *txn) error {
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO students (roll, name, created_at) VALUES (?, ?, ?)`,
			st.Roll, st.Name, t.now)
		if err != nil {
			return err
		}
		st.ID, err = res.LastInsertId()
		st.CreatedAt = t.now
		return err
	})
}

// CreateCourse inserts a course. An existing code fails with DuplicateKey.
func (s *Store) CreateCourse(ctx context.Context, c *domain.Course) error {
	return s.withTx(ctx, "create course", func(t *txn) error {
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO courses (code, title, created_at) VALUES (?, ?, ?)`,
			c.Code, c.Title, t.now)
		if err != nil {
			return err
		}
		c.ID, err = res.LastInsertId()
		c.CreatedAt = t.now
		return err
	})
}

// Enroll relates an existing student to an existing course.
// Enrolling twice is not an error.
func (s *Store) Enroll(ctx context.Context, roll, code string) error {
	return s.withTx(ctx, "enroll", func(t *txn) error {
		studentID, err := t.lookupStudent(ctx, roll)
		if err != nil {
			return err
		}
		courseID, err := t.lookupCourse(ctx, code)
		if err != nil {
			return err
		}
		return t.ensureEnrollment(ctx, studentID, courseID)
	})
}

// RecordAttendance stores one attendance record and its side effects atomically.
//
// With policy.AutoCreate unknown students and courses are created with the
// name "Unknown"; otherwise they fail with NotFound. The enrollment is ensured
// in both cases. With policy.DailyUnique a second record for the same
// (student, course, day) fails with DuplicateRecord.
func (s *Store) RecordAttendance(ctx context.Context, rec *domain.AttendanceRecord, policy domain.MarkPolicy) error {
	return s.withTx(ctx, "record attendance", func(t *txn) error {
		var studentID, courseID int64
		var err error

		if policy.AutoCreate {
			studentID, err = t.getOrCreateStudent(ctx, rec.Roll)
		} else {
			studentID, err = t.lookupStudent(ctx, rec.Roll)
		}
		if err != nil {
			return err
		}

		if policy.AutoCreate {
			courseID, err = t.getOrCreateCourse(ctx, rec.Code)
		} else {
			courseID, err = t.lookupCourse(ctx, rec.Code)
		}
		if err != nil {
			return err
		}

		if err := t.ensureEnrollment(ctx, studentID, courseID); err != nil {
			return err
		}

		if policy.DailyUnique {
			exists, err := t.hasRecord(ctx, studentID, courseID, rec.Day)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrDuplicateRecord.WithDetails(rec.Roll + "/" + rec.Code + "/" + rec.Day)
			}
		}

		return t.insertAttendance(ctx, studentID, courseID, rec)
	})
}

// GetOrCreateStudent returns the id for roll, creating the student if needed.
func (s *Store) GetOrCreateStudent(ctx context.Context, roll string) (int64, error) {
	var id int64
	err := s.withTx(ctx, "get or create student", func(t *txn) error {
		var err error
		id, err = t.getOrCreateStudent(ctx, roll)
		return err
	})
	return id, err
}

// GetOrCreateCourse returns the id for code, creating the course if needed.
func (s *Store) GetOrCreateCourse(ctx context.Context, code string) (int64, error) {
	var id int64
	err := s.withTx(ctx, "get or create course", func(t *txn) error {
		var err error
		id, err = t.getOrCreateCourse(ctx, code)
		return err
	})
	return id, err
}

// ============================================================================
// Transaction steps
// ============================================================================

func (t *txn) getOrCreateStudent(ctx context.Context, roll string) (int64, error) {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO students (roll, name, created_at) VALUES (?, ?, ?) ON CONFLICT(roll) DO NOTHING`,
		roll, domain.UnknownName, t.now); err != nil {
		return 0, err
	}
	return t.lookupStudent(ctx, roll)
}

func (t *txn) getOrCreateCourse(ctx context.Context, code string) (int64, error) {
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO courses (code, title, created_at) VALUES (?, ?, ?) ON CONFLICT(code) DO NOTHING`,
		code, domain.UnknownName, t.now); err != nil {
		return 0, err
	}
	return t.lookupCourse(ctx, code)
}

func (t *txn) lookupStudent(ctx context.Context, roll string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM students WHERE roll = ?`, roll).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrStudentNotFound.WithDetails("roll " + roll)
	}
	return id, err
}

func (t *txn) lookupCourse(ctx context.Context, code string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `SELECT id FROM courses WHERE code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrCourseNotFound.WithDetails("code " + code)
	}
	return id, err
}

func (t *txn) ensureEnrollment(ctx context.Context, studentID, courseID int64) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO enrollments (student_id, course_id, created_at) VALUES (?, ?, ?)`,
		studentID, courseID, t.now)
	return err
}

func (t *txn) hasRecord(ctx context.Context, studentID, courseID int64, day string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx,
		`SELECT 1 FROM attendance WHERE student_id = ? AND course_id = ? AND day = ? LIMIT 1`,
		studentID, courseID, day).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (t *txn) insertAttendance(ctx context.Context, studentID, courseID int64, rec *domain.AttendanceRecord) error {
	var recordedAt any
	if !rec.RecordedAt.IsZero() {
		recordedAt = rec.RecordedAt.UTC()
	}
	source := rec.Source
	if source == "" {
		source = domain.SourceMark
	}

	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO attendance (student_id, course_id, day, recorded_at, status, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		studentID, courseID, rec.Day, recordedAt, string(rec.Status), source)
	return err
}
