package service

import (
	"context"
	"fmt"

	"github.com/yndnr/rollcall/internal/core/domain"
)

// RecordRepository defines the storage interface for records.
type RecordRepository interface {
	// CreateStudent inserts a student; DuplicateKey when the roll exists.
	CreateStudent(ctx context.Context, s *domain.Student) error

	// CreateCourse inserts a course; DuplicateKey when the code exists.
	CreateCourse(ctx context.Context, c *domain.Course) error

	// Enroll relates existing entities; NotFound when either is missing.
	Enroll(ctx context.Context, roll, code string) error

	// RecordAttendance applies one mark atomically under the given policy.
	RecordAttendance(ctx context.Context, rec *domain.AttendanceRecord, policy domain.MarkPolicy) error

	ListStudents(ctx context.Context) ([]domain.Student, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	ReportByRoll(ctx context.Context, roll string) ([]domain.AttendanceEntry, error)
	ReportByCode(ctx context.Context, code string) ([]domain.AttendanceEntry, error)
	DaySummary(ctx context.Context, day string) ([]domain.StatusCount, error)
}

// Mode selects how MARK treats unknown students and courses.
type Mode string

const (
	// ModeStrict requires explicit ADD_STUDENT / ADD_COURSE before MARK.
	ModeStrict Mode = "strict"

	// ModePermissive creates unknown students and courses on MARK.
	ModePermissive Mode = "permissive"
)

// ParseMode parses a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModePermissive:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeStrict, ModePermissive)
	}
}

// Options configures a RecordService.
type Options struct {
	Mode        Mode
	DailyUnique bool
}

// RecordService validates commands and applies them to the repository.
// It holds no mutable state and is safe for concurrent use.
type RecordService struct {
	repo   RecordRepository
	mode   Mode
	policy domain.MarkPolicy
}

// NewRecordService creates a new RecordService. An empty mode means strict.
func NewRecordService(repo RecordRepository, opts Options) *RecordService {
	if opts.Mode == "" {
		opts.Mode = ModeStrict
	}
	return &RecordService{
		repo: repo,
		mode: opts.Mode,
		policy: domain.MarkPolicy{
			AutoCreate:  opts.Mode == ModePermissive,
			DailyUnique: opts.DailyUnique,
		},
	}
}

// Mode returns the configured mode.
func (s *RecordService) Mode() Mode {
	return s.mode
}

// ============================================================================
// Writes
// ============================================================================

// AddStudent creates a student.
func (s *RecordService) AddStudent(ctx context.Context, roll, name string) (*domain.Student, error) {
	st, err := domain.NewStudent(roll, name)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateStudent(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// AddCourse creates a course.
func (s *RecordService) AddCourse(ctx context.Context, code, title string) (*domain.Course, error) {
	c, err := domain.NewCourse(code, title)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Enroll enrolls an existing student in an existing course.
func (s *RecordService) Enroll(ctx context.Context, roll, code string) error {
	if err := validateKeys(roll, code); err != nil {
		return err
	}
	return s.repo.Enroll(ctx, roll, code)
}

// Mark records attendance from a MARK command.
//
// date is a calendar day (YYYY-MM-DD); a full timestamp is accepted too and
// keeps its instant, filed under the day of its own offset. status is P, A
// or L (or the long names).
func (s *RecordService) Mark(ctx context.Context, roll, code, date, status string) error {
	if err := validateKeys(roll, code); err != nil {
		return err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return err
	}

	rec := &domain.AttendanceRecord{Roll: roll, Code: code, Status: st, Source: domain.SourceMark}
	if day, err := domain.ParseDay(date); err == nil {
		rec.Day = day
	} else {
		at, err := domain.ParseInstant(date)
		if err != nil {
			return err
		}
		rec.Day = at.Format(domain.DayLayout)
		rec.RecordedAt = at.UTC()
	}

	return s.repo.RecordAttendance(ctx, rec, s.policy)
}

// MarkLegacy records attendance from an ATT line.
//
// ATT clients always relied on implicit creation and send one line per
// check-in, so the legacy path creates unknown entities and does not apply
// the daily uniqueness rule regardless of mode.
func (s *RecordService) MarkLegacy(ctx context.Context, roll, code, timestamp string, rawStatus []byte) error {
	if err := validateKeys(roll, code); err != nil {
		return err
	}
	at, err := domain.ParseInstant(timestamp)
	if err != nil {
		return err
	}

	rec := &domain.AttendanceRecord{
		Roll:       roll,
		Code:       code,
		Day:        at.Format(domain.DayLayout),
		RecordedAt: at.UTC(),
		Status:     domain.DecodeLegacyStatus(rawStatus),
		Source:     domain.SourceLegacy,
	}
	return s.repo.RecordAttendance(ctx, rec, domain.MarkPolicy{AutoCreate: true})
}

// ============================================================================
// Reads
// ============================================================================

// ListStudents returns all students ordered by roll.
func (s *RecordService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return s.repo.ListStudents(ctx)
}

// ListCourses returns all courses ordered by code.
func (s *RecordService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.repo.ListCourses(ctx)
}

// ReportByRoll returns one student's attendance ordered by day, then course.
func (s *RecordService) ReportByRoll(ctx context.Context, roll string) ([]domain.AttendanceEntry, error) {
	if err := domain.ValidateKey("roll", roll); err != nil {
		return nil, err
	}
	return s.repo.ReportByRoll(ctx, roll)
}

// ReportByCode returns one course's attendance ordered by day, then roll.
func (s *RecordService) ReportByCode(ctx context.Context, code string) ([]domain.AttendanceEntry, error) {
	if err := domain.ValidateKey("code", code); err != nil {
		return nil, err
	}
	return s.repo.ReportByCode(ctx, code)
}

// DaySummary returns per-status counts for one day.
func (s *RecordService) DaySummary(ctx context.Context, date string) ([]domain.StatusCount, error) {
	day, err := domain.ParseDay(date)
	if err != nil {
		return nil, err
	}
	return s.repo.DaySummary(ctx, day)
}

func validateKeys(roll, code string) error {
	if err := domain.ValidateKey("roll", roll); err != nil {
		return err
	}
	return domain.ValidateKey("code", code)
}
