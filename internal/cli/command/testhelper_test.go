package command

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/core/service"
	"github.com/yndnr/rollcall/internal/server/lineserver"
	"github.com/yndnr/rollcall/internal/storage/sqlstore"
	"github.com/yndnr/rollcall/internal/telemetry/metric"
)

// testServer is a real line server on a temporary database.
type testServer struct {
	addr    string
	metrics *metric.Registry
}

func startServer(t *testing.T, legacy bool) *testServer {
	t.Helper()

	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "rollcall.db"))
	require.NoError(t, err)

	reg := metric.NewRegistry()
	svc := service.NewRecordService(store, service.Options{Mode: service.ModeStrict, DailyUnique: true})
	cfg := lineserver.DefaultConfig()
	cfg.LegacyATT = legacy
	srv := lineserver.New(cfg, lineserver.NewDispatcher(svc, reg), reg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background(), ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Shutdown(ctx))
		<-errCh
		store.Close()
	})
	return &testServer{addr: ln.Addr().String(), metrics: reg}
}

// cliRunner runs the app against one server with an isolated config file.
type cliRunner struct {
	t       *testing.T
	addr    string
	cfgPath string
	stdin   io.Reader
}

func newRunner(t *testing.T, addr string) *cliRunner {
	return &cliRunner{t: t, addr: addr, cfgPath: filepath.Join(t.TempDir(), "cli.yaml")}
}

// run executes one command line and returns stdout.
func (r *cliRunner) run(args ...string) (string, error) {
	r.t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	if r.stdin != nil {
		app.Reader = r.stdin
	}

	argv := []string{"rollcall-cli", "--config", r.cfgPath}
	if r.addr != "" {
		argv = append(argv, "--server", r.addr)
	}
	err := app.Run(append(argv, args...))
	return out.String(), err
}

// ok runs a command that must succeed.
func (r *cliRunner) ok(args ...string) string {
	r.t.Helper()
	out, err := r.run(args...)
	require.NoError(r.t, err, "rollcall-cli %s", strings.Join(args, " "))
	return out
}
