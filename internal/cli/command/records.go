package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rollcall/pkg/lineproto"
)

// StudentCommand returns the student subcommand group.
func StudentCommand() *cli.Command {
	return &cli.Command{
		Name:    "student",
		Aliases: []string{"st"},
		Usage:   "Manage students",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a student",
				ArgsUsage: "ROLL NAME",
				Action: func(c *cli.Context) error {
					if err := needArgs(c, 2); err != nil {
						return err
					}
					if _, err := request(c, lineproto.OpAddStudent, c.Args().Get(0), c.Args().Get(1)); err != nil {
						return err
					}
					return done(c, fmt.Sprintf("student %s added", c.Args().Get(0)))
				},
			},
			{
				Name:   "list",
				Usage:  "List students",
				Action: listAction(lineproto.OpListStudents, "ROLL", "NAME"),
			},
		},
	}
}

// CourseCommand returns the course subcommand group.
func CourseCommand() *cli.Command {
	return &cli.Command{
		Name:    "course",
		Aliases: []string{"co"},
		Usage:   "Manage courses",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Register a course",
				ArgsUsage: "CODE TITLE",
				Action: func(c *cli.Context) error {
					if err := needArgs(c, 2); err != nil {
						return err
					}
					if _, err := request(c, lineproto.OpAddCourse, c.Args().Get(0), c.Args().Get(1)); err != nil {
						return err
					}
					return done(c, fmt.Sprintf("course %s added", c.Args().Get(0)))
				},
			},
			{
				Name:   "list",
				Usage:  "List courses",
				Action: listAction(lineproto.OpListCourses, "CODE", "TITLE"),
			},
		},
	}
}

// EnrollCommand returns the enroll command.
func EnrollCommand() *cli.Command {
	return &cli.Command{
		Name:      "enroll",
		Usage:     "Enroll a student in a course",
		ArgsUsage: "ROLL CODE",
		Action: func(c *cli.Context) error {
			if err := needArgs(c, 2); err != nil {
				return err
			}
			roll, code := c.Args().Get(0), c.Args().Get(1)
			if _, err := request(c, lineproto.OpEnroll, roll, code); err != nil {
				return err
			}
			return done(c, fmt.Sprintf("%s enrolled in %s", roll, code))
		},
	}
}

// MarkCommand returns the mark command.
func MarkCommand() *cli.Command {
	return &cli.Command{
		Name:      "mark",
		Usage:     "Record attendance (P, A or L)",
		ArgsUsage: "ROLL CODE STATUS",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "day (YYYY-MM-DD) or RFC 3339 timestamp; defaults to today",
			},
		},
		Action: func(c *cli.Context) error {
			if err := needArgs(c, 3); err != nil {
				return err
			}
			roll, code, status := c.Args().Get(0), c.Args().Get(1), c.Args().Get(2)
			date := c.String("date")
			if date == "" {
				date = today()
			}
			if _, err := request(c, lineproto.OpMark, roll, code, date, status); err != nil {
				return err
			}
			return done(c, fmt.Sprintf("%s %s %s on %s", roll, code, status, date))
		},
	}
}

// AttendCommand returns the attend command, which speaks the legacy ATT
// framing of the old terminals.
func AttendCommand() *cli.Command {
	return &cli.Command{
		Name:      "attend",
		Usage:     "Send a record in the legacy terminal format",
		ArgsUsage: "ROLL CODE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "at",
				Usage: "RFC 3339 timestamp; defaults to now",
			},
			&cli.BoolFlag{
				Name:  "absent",
				Usage: "record absent instead of present",
			},
		},
		Action: func(c *cli.Context) error {
			if err := needArgs(c, 2); err != nil {
				return err
			}
			at := c.String("at")
			if at == "" {
				at = time.Now().Format(time.RFC3339)
			}
			status := byte(1)
			if c.Bool("absent") {
				status = 0
			}

			st, err := mustState(c)
			if err != nil {
				return err
			}
			client, err := st.mgr.Client(c.Context)
			if err != nil {
				return err
			}
			if err := client.Attend(c.Args().Get(0), c.Args().Get(1), at, []byte{status}); err != nil {
				var se *lineproto.ServerError
				if !errors.As(err, &se) {
					st.mgr.Disconnect()
				}
				return describe(err)
			}
			return done(c, "recorded")
		},
	}
}

func today() string {
	return time.Now().Format("2006-01-02")
}
