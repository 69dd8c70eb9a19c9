package lineserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/yndnr/rollcall/internal/core/domain"
	"github.com/yndnr/rollcall/internal/telemetry/logger"
	"github.com/yndnr/rollcall/internal/telemetry/metric"
	"github.com/yndnr/rollcall/pkg/lineproto"
)

// RecordService is the subset of service.RecordService the dispatcher needs.
type RecordService interface {
	AddStudent(ctx context.Context, roll, name string) (*domain.Student, error)
	AddCourse(ctx context.Context, code, title string) (*domain.Course, error)
	Enroll(ctx context.Context, roll, code string) error
	Mark(ctx context.Context, roll, code, date, status string) error
	MarkLegacy(ctx context.Context, roll, code, timestamp string, rawStatus []byte) error
	ListStudents(ctx context.Context) ([]domain.Student, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	ReportByRoll(ctx context.Context, roll string) ([]domain.AttendanceEntry, error)
	ReportByCode(ctx context.Context, code string) ([]domain.AttendanceEntry, error)
	DaySummary(ctx context.Context, date string) ([]domain.StatusCount, error)
}

// Dispatcher turns one parsed command into exactly one response.
type Dispatcher struct {
	svc     RecordService
	metrics *metric.Registry
}

// NewDispatcher creates a dispatcher. metrics may be nil.
func NewDispatcher(svc RecordService, metrics *metric.Registry) *Dispatcher {
	return &Dispatcher{svc: svc, metrics: metrics}
}

// Dispatch executes cmd. Failures, including panics in the service, are
// reported as error responses.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd lineproto.Command) (resp lineproto.Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.L(ctx).Error("dispatch panic",
				"op", string(cmd.Op),
				"panic", fmt.Sprint(r),
			)
			resp = lineproto.Err(domain.CodeInternal)
		}
		if cmd.Legacy {
			resp = resp.AsLegacy()
		}
		d.observe(cmd.Op, resp, time.Since(start))
	}()

	resp, err := d.dispatch(ctx, cmd)
	if err != nil {
		return d.errorResponse(ctx, cmd, err)
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd lineproto.Command) (lineproto.Response, error) {
	f := cmd.Field

	switch cmd.Op {
	case lineproto.OpPing:
		return lineproto.OK(), nil

	case lineproto.OpAddStudent:
		_, err := d.svc.AddStudent(ctx, f(0), f(1))
		return lineproto.OK(), err

	case lineproto.OpAddCourse:
		_, err := d.svc.AddCourse(ctx, f(0), f(1))
		return lineproto.OK(), err

	case lineproto.OpEnroll:
		return lineproto.OK(), d.svc.Enroll(ctx, f(0), f(1))

	case lineproto.OpMark:
		return lineproto.OK(), d.svc.Mark(ctx, f(0), f(1), f(2), f(3))

	case lineproto.OpAttend:
		return lineproto.OK(), d.svc.MarkLegacy(ctx, f(0), f(1), f(2), []byte(f(3)))

	case lineproto.OpListStudents:
		students, err := d.svc.ListStudents(ctx)
		if err != nil {
			return lineproto.Response{}, err
		}
		rows := make([][]string, 0, len(students))
		for _, s := range students {
			rows = append(rows, []string{s.Roll, s.Name})
		}
		return lineproto.Rows(rows), nil

	case lineproto.OpListCourses:
		courses, err := d.svc.ListCourses(ctx)
		if err != nil {
			return lineproto.Response{}, err
		}
		rows := make([][]string, 0, len(courses))
		for _, c := range courses {
			rows = append(rows, []string{c.Code, c.Title})
		}
		return lineproto.Rows(rows), nil

	case lineproto.OpReportByRoll:
		entries, err := d.svc.ReportByRoll(ctx, f(0))
		if err != nil {
			return lineproto.Response{}, err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Day, e.Code, e.Title, string(e.Status)})
		}
		return lineproto.Rows(rows), nil

	case lineproto.OpReportByCode:
		entries, err := d.svc.ReportByCode(ctx, f(0))
		if err != nil {
			return lineproto.Response{}, err
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Day, e.Roll, e.Name, string(e.Status)})
		}
		return lineproto.Rows(rows), nil

	case lineproto.OpSummary:
		counts, err := d.svc.DaySummary(ctx, f(0))
		if err != nil {
			return lineproto.Response{}, err
		}
		rows := make([][]string, 0, len(counts))
		for _, c := range counts {
			rows = append(rows, []string{string(c.Status), strconv.Itoa(c.Count)})
		}
		return lineproto.Rows(rows), nil
	}

	return lineproto.Err(lineproto.CodeBadOpcode), nil
}

// errorResponse maps err to its wire code. Expected domain failures are
// logged at debug, everything else at error.
func (d *Dispatcher) errorResponse(ctx context.Context, cmd lineproto.Command, err error) lineproto.Response {
	code := domain.GetErrorCode(err)
	level := slog.LevelDebug
	switch {
	case code == "":
		code = domain.CodeInternal
		level = slog.LevelError
	case errors.Is(err, domain.ErrStorage):
		level = slog.LevelError
	}

	logger.L(ctx).Log(ctx, level, "command failed",
		"op", string(cmd.Op),
		"code", code,
		"error", err,
	)
	return lineproto.Err(code)
}

func (d *Dispatcher) observe(op lineproto.Opcode, resp lineproto.Response, took time.Duration) {
	if d.metrics == nil {
		return
	}
	result := metric.ResultOK
	if resp.IsError() {
		result = metric.ResultError
	}
	d.metrics.ObserveCommand(string(op), result, took)
}
