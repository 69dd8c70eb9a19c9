package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:    "shell",
		Aliases: []string{"sh"},
		Usage:   "Interactive mode; commands share one connection",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "do not read or write the history file",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	st, err := mustState(c)
	if err != nil {
		return err
	}
	if st.inShell {
		return errors.New("already in shell")
	}
	st.inShell = true
	defer func() {
		st.inShell = false
		st.mgr.Disconnect()
	}()

	exec := func(args []string) error {
		sub := App()
		sub.Metadata[stateKey] = st
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		sub.ExitErrHandler = func(*cli.Context, error) {}
		return sub.RunContext(c.Context, append([]string{c.App.Name}, args...))
	}

	r := repl.New(exec, commandPaths(commands()))
	if c.App.Reader != nil {
		r.SetIO(c.App.Reader, c.App.Writer)
	}

	history := r.History()
	if !c.Bool("no-history") {
		if err := history.Load(); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "warning: history: %v\n", err)
		}
	}
	fmt.Fprintf(c.App.Writer, "rollcall shell (server %s); type help or exit\n", st.mgr.Addr())

	runErr := r.Run()
	if !c.Bool("no-history") {
		if err := history.Save(); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "warning: history: %v\n", err)
		}
	}
	return runErr
}

// commandPaths lists "group sub" paths for completion.
func commandPaths(cmds []*cli.Command) []string {
	var out []string
	for _, cmd := range cmds {
		if cmd.Name == "shell" {
			continue
		}
		out = append(out, cmd.Name)
		for _, sub := range cmd.Subcommands {
			out = append(out, cmd.Name+" "+sub.Name)
		}
	}
	return out
}
