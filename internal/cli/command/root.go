package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/cli/config"
	"github.com/yndnr/rollcall/internal/cli/connection"
	"github.com/yndnr/rollcall/internal/cli/output"
	"github.com/yndnr/rollcall/internal/infra/buildinfo"
	"github.com/yndnr/rollcall/pkg/lineproto"
)

const stateKey = "state"

// state is shared by every command of one process, including all lines
// of a shell session.
type state struct {
	cfg     *config.CLIConfig
	cfgPath string
	mgr     *connection.Manager
	inShell bool
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "rollcall-cli",
		Usage:                "Attendance records from the command line",
		Version:              buildinfo.Get().Version,
		Flags:                globalFlags(),
		Commands:             commands(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		Before:               before,
		After: func(c *cli.Context) error {
			if st := getState(c); st != nil && !st.inShell {
				st.mgr.Disconnect()
			}
			return nil
		},
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		StudentCommand(),
		CourseCommand(),
		EnrollCommand(),
		MarkCommand(),
		AttendCommand(),
		ReportCommand(),
		SummaryCommand(),
		PingCommand(),
		StatusCommand(),
		VersionCommand(),
		ConfigCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address or profile name",
			EnvVars: []string{"ROLLCALL_SERVER"},
			Value:   config.DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			EnvVars: []string{"ROLLCALL_OUTPUT"},
			Value:   config.DefaultOutput,
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "omit table headers",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "dial and request timeout",
			EnvVars: []string{"ROLLCALL_TIMEOUT"},
			Value:   config.DefaultTimeout,
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"ROLLCALL_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

// before loads the config file once; flags and environment win over it.
func before(c *cli.Context) error {
	if getState(c) != nil {
		return nil
	}

	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	server := cfg.Server
	if c.IsSet("server") {
		server = c.String("server")
	}
	timeout := cfg.Timeout
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if _, err := output.ParseFormat(cfg.Output); err != nil {
		return err
	}

	c.App.Metadata[stateKey] = &state{
		cfg:     cfg,
		cfgPath: path,
		mgr:     connection.NewManager(cfg.ResolveServer(server), timeout),
	}
	return nil
}

func getState(c *cli.Context) *state {
	st, _ := c.App.Metadata[stateKey].(*state)
	return st
}

func mustState(c *cli.Context) (*state, error) {
	st := getState(c)
	if st == nil {
		return nil, errors.New("cli not initialized")
	}
	return st, nil
}

// request sends one command through the shared connection.
func request(c *cli.Context, op lineproto.Opcode, fields ...string) (lineproto.Response, error) {
	st, err := mustState(c)
	if err != nil {
		return lineproto.Response{}, err
	}
	ctx, cancel := context.WithTimeout(c.Context, requestTimeout(c, st))
	defer cancel()

	resp, err := st.mgr.Do(ctx, op, fields...)
	return resp, describe(err)
}

func requestTimeout(c *cli.Context, st *state) time.Duration {
	if c.IsSet("timeout") {
		return c.Duration("timeout")
	}
	if st.cfg.Timeout > 0 {
		return st.cfg.Timeout
	}
	return config.DefaultTimeout
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	st, err := mustState(c)
	if err != nil {
		return err
	}
	format := st.cfg.Output
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	return output.NewFormatter(f, c.Bool("no-headers")).Format(writer(c), data)
}

// done reports a successful status command.
func done(c *cli.Context, msg string) error {
	st, err := mustState(c)
	if err != nil {
		return err
	}
	if c.IsSet("output") || st.cfg.Output != string(output.FormatTable) {
		return render(c, map[string]string{"result": "ok", "message": msg})
	}
	_, err = fmt.Fprintln(writer(c), msg)
	return err
}

func writer(c *cli.Context) io.Writer {
	return c.App.Writer
}

var errorHints = map[string]string{
	"NotFound":           "student or course not found",
	"DuplicateKey":       "already exists",
	"DuplicateRecord":    "already marked for that day",
	"InvalidStatus":      "status must be P, A or L",
	"InvalidDate":        "date must be YYYY-MM-DD or RFC 3339",
	"InvalidArgument":    "invalid argument",
	"FieldCountMismatch": "wrong number of fields",
	"BadOpcode":          "command not supported by server",
	"RateLimited":        "rate limited, try again",
	"ServerFull":         "server is at its connection limit",
}

// describe adds a readable hint to server error codes.
func describe(err error) error {
	var se *lineproto.ServerError
	if !errors.As(err, &se) {
		return err
	}
	if hint, ok := errorHints[se.Code]; ok {
		return fmt.Errorf("%s (%s)", hint, se.Code)
	}
	return err
}

// needArgs checks the positional argument count.
func needArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s): %s", c.Command.FullName(), n, c.Command.ArgsUsage)
	}
	return nil
}
