package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/cli/connection"
	"github.com/yndnr/rollcall/internal/infra/buildinfo"
	"github.com/yndnr/rollcall/pkg/lineproto"
)

// DefaultAdminURL is where rollcall-server serves /health and /ready.
const DefaultAdminURL = "http://127.0.0.1:5580"

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			start := time.Now()
			if _, err := request(c, lineproto.OpPing); err != nil {
				return err
			}
			st, err := mustState(c)
			if err != nil {
				return err
			}
			return done(c, fmt.Sprintf("PONG from %s in %s", st.mgr.Addr(), time.Since(start).Round(time.Microsecond)))
		},
	}
}

// StatusCommand returns the status command, which reads the admin endpoint.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show server readiness and record counts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "admin",
				Usage:   "admin endpoint URL",
				EnvVars: []string{"ROLLCALL_ADMIN"},
				Value:   DefaultAdminURL,
			},
		},
		Action: func(c *cli.Context) error {
			st, err := mustState(c)
			if err != nil {
				return err
			}
			admin := connection.NewAdminClient(c.String("admin"), requestTimeout(c, st))
			body, err := admin.Ready(c.Context)
			if body != nil {
				if rerr := render(c, body); rerr != nil {
					return rerr
				}
			}
			return err
		},
	}
}

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show client build information",
		Action: func(c *cli.Context) error {
			return render(c, buildinfo.Get())
		},
	}
}
