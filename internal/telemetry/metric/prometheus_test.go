package metric

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.CommandsTotal == nil || r.CommandDuration == nil {
		t.Error("command metrics are nil")
	}
	if r.ConnectionsActive == nil || r.ConnectionsTotal == nil || r.ConnectionsRejected == nil {
		t.Error("connection metrics are nil")
	}
}

func TestRegistry_ObserveCommand(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("MARK", ResultOK, time.Millisecond)
	r.ObserveCommand("MARK", ResultOK, time.Millisecond)
	r.ObserveCommand("MARK", ResultError, time.Millisecond)

	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("MARK", ResultOK)); got != 2 {
		t.Errorf("commands_total{MARK,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("MARK", ResultError)); got != 1 {
		t.Errorf("commands_total{MARK,error} = %v, want 1", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Set(3)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	for _, want := range []string{
		"rollcall_line_connections_total 1",
		"rollcall_line_connections_active 3",
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistries_AreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.ConnectionsTotal.Inc()
	if got := testutil.ToFloat64(b.ConnectionsTotal); got != 0 {
		t.Errorf("second registry sees %v connections", got)
	}
}
