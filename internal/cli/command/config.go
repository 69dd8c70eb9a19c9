package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set server, output, timeout or profile.<name>",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	st, err := mustState(c)
	if err != nil {
		return err
	}
	effective := *st.cfg
	effective.Server = st.mgr.Addr()
	effective.Timeout = requestTimeout(c, st)
	return render(c, effective)
}

func configSet(c *cli.Context) error {
	if err := needArgs(c, 2); err != nil {
		return err
	}
	st, err := mustState(c)
	if err != nil {
		return err
	}

	// Edit the file contents, not the flag-merged view.
	onDisk, err := config.Load(st.cfgPath)
	if err != nil {
		return err
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	if err := onDisk.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(onDisk, st.cfgPath); err != nil {
		return err
	}
	return done(c, fmt.Sprintf("%s = %q saved to %s", key, value, st.cfgPath))
}

func configPath(c *cli.Context) error {
	st, err := mustState(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer(c), st.cfgPath)
	return err
}
