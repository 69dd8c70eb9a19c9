package sqlstore

import (
	"context"
	"database/sql"

	"github.com/yndnr/rollcall/internal/core/domain"
)

// ListStudents returns all students ordered by roll.
func (s *Store) ListStudents(ctx context.Context) ([]domain.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, roll, name, created_at FROM students ORDER BY roll ASC`)
	if err != nil {
		return nil, storageErr("list students", err)
	}
	defer rows.Close()

	var out []domain.Student
	for rows.Next() {
		var st domain.Student
		if err := rows.Scan(&st.ID, &st.Roll, &st.Name, &st.CreatedAt); err != nil {
			return nil, storageErr("list students: scan", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list students", err)
	}
	return out, nil
}

// ListCourses returns all courses ordered by code.
func (s *Store) ListCourses(ctx context.Context) ([]domain.Course, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, title, created_at FROM courses ORDER BY code ASC`)
	if err != nil {
		return nil, storageErr("list courses", err)
	}
	defer rows.Close()

	var out []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.CreatedAt); err != nil {
			return nil, storageErr("list courses: scan", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list courses", err)
	}
	return out, nil
}

const reportSelect = `
	SELECT a.day, s.roll, s.name, c.code, c.title, a.status, a.recorded_at
	FROM attendance a
	JOIN students s ON s.id = a.student_id
	JOIN courses c ON c.id = a.course_id
`

// ReportByRoll returns the records of one student ordered by day, then course code.
// An unknown roll yields an empty report.
func (s *Store) ReportByRoll(ctx context.Context, roll string) ([]domain.AttendanceEntry, error) {
	return s.report(ctx, "report by roll",
		reportSelect+`WHERE s.roll = ? ORDER BY a.day ASC, c.code ASC, a.id ASC`, roll)
}

// ReportByCode returns the records of one course ordered by day, then roll.
// An unknown code yields an empty report.
func (s *Store) ReportByCode(ctx context.Context, code string) ([]domain.AttendanceEntry, error) {
	return s.report(ctx, "report by code",
		reportSelect+`WHERE c.code = ? ORDER BY a.day ASC, s.roll ASC, a.id ASC`, code)
}

func (s *Store) report(ctx context.Context, op, query string, key string) ([]domain.AttendanceEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []domain.AttendanceEntry
	for rows.Next() {
		var (
			e          domain.AttendanceEntry
			status     string
			recordedAt sql.NullTime
		)
		if err := rows.Scan(&e.Day, &e.Roll, &e.Name, &e.Code, &e.Title, &status, &recordedAt); err != nil {
			return nil, storageErr(op+": scan", err)
		}
		e.Status = domain.Status(status)
		if recordedAt.Valid {
			e.RecordedAt = recordedAt.Time.UTC()
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

// DaySummary counts the records of one day per status. The result always
// holds P, A and L in that order, with zero for statuses without records.
func (s *Store) DaySummary(ctx context.Context, day string) ([]domain.StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM attendance
		WHERE day = ?
		GROUP BY status`, day)
	if err != nil {
		return nil, storageErr("day summary", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int, 3)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, storageErr("day summary: scan", err)
		}
		counts[domain.Status(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("day summary", err)
	}

	out := make([]domain.StatusCount, 0, 3)
	for _, st := range []domain.Status{domain.StatusPresent, domain.StatusAbsent, domain.StatusLate} {
		out = append(out, domain.StatusCount{Status: st, Count: counts[st]})
	}
	return out, nil
}

// Stats returns row counts for every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM enrollments),
			(SELECT COUNT(*) FROM attendance)`).
		Scan(&st.Students, &st.Courses, &st.Enrollments, &st.Records)
	if err != nil {
		return Stats{}, storageErr("stats", err)
	}
	return st, nil
}

// Counts returns the row counts keyed by table name.
func (st Stats) Counts() map[string]int64 {
	return map[string]int64{
		"students":    st.Students,
		"courses":     st.Courses,
		"enrollments": st.Enrollments,
		"attendance":  st.Records,
	}
}
