package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/internal/cli/output"
	"github.com/yndnr/rollcall/pkg/lineproto"
)

// ReportCommand returns the report subcommand group.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Attendance history",
		Subcommands: []*cli.Command{
			{
				Name:      "roll",
				Usage:     "History of one student",
				ArgsUsage: "ROLL",
				Action:    listAction(lineproto.OpReportByRoll, "DAY", "CODE", "TITLE", "STATUS"),
			},
			{
				Name:      "code",
				Usage:     "History of one course",
				ArgsUsage: "CODE",
				Action:    listAction(lineproto.OpReportByCode, "DAY", "ROLL", "NAME", "STATUS"),
			},
		},
	}
}

// SummaryCommand returns the summary command.
func SummaryCommand() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Status counts for one day; defaults to today",
		ArgsUsage: "[DAY]",
		Action: func(c *cli.Context) error {
			day := today()
			switch c.NArg() {
			case 0:
			case 1:
				day = c.Args().First()
			default:
				return needArgs(c, 1)
			}
			return fetchRows(c, lineproto.OpSummary, []string{day}, "STATUS", "COUNT")
		},
	}
}

// listAction builds an action for a streaming opcode whose arguments are
// taken positionally.
func listAction(op lineproto.Opcode, headers ...string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := needArgs(c, op.Arity()); err != nil {
			return err
		}
		return fetchRows(c, op, c.Args().Slice(), headers...)
	}
}

func fetchRows(c *cli.Context, op lineproto.Opcode, fields []string, headers ...string) error {
	resp, err := request(c, op, fields...)
	if err != nil {
		return err
	}
	t := output.NewTable(headers...)
	for _, row := range resp.Rows {
		t.AddRow(row...)
	}
	return render(c, t)
}
