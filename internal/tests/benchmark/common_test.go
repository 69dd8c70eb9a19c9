package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/yndnr/rollcall/internal/core/domain"
	"github.com/yndnr/rollcall/internal/storage/sqlstore"
)

// RecordCounts defines prefilled attendance record counts.
var RecordCounts = []int{1000, 10000, 50000}

// SmallRecordCounts for quick benchmarks.
var SmallRecordCounts = []int{1000}

const benchCourses = 20

var (
	strictPolicy = domain.MarkPolicy{DailyUnique: true}
	loosePolicy  = domain.MarkPolicy{AutoCreate: true}
)

func openStore(b *testing.B) *sqlstore.Store {
	b.Helper()
	store, err := sqlstore.Open(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("open store: %v", err)
	}
	b.Cleanup(func() { store.Close() })
	return store
}

func rollOf(i int) string { return fmt.Sprintf("R%05d", i) }
func codeOf(i int) string { return fmt.Sprintf("C%03d", i%benchCourses) }

func dayOf(i int) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%365).Format(domain.DayLayout)
}

// prefillStore writes count records spread over students, courses and days.
func prefillStore(b *testing.B, store *sqlstore.Store, count int) {
	b.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		rec := &domain.AttendanceRecord{
			Roll:   rollOf(i % 500),
			Code:   codeOf(i),
			Day:    dayOf(i / 500),
			Status: domain.StatusPresent,
		}
		if err := store.RecordAttendance(ctx, rec, loosePolicy); err != nil {
			b.Fatalf("prefill %d: %v", i, err)
		}
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
}

// runWithRecordCounts runs a benchmark function with various prefill sizes.
func runWithRecordCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("records_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
