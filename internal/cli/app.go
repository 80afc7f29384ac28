// Package cli implements the rallyctl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	urfave "github.com/urfave/cli/v3"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/adapters/export"
	"github.com/okian/rallyboard/internal/adapters/source"
	"github.com/okian/rallyboard/internal/adapters/terminal"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/ranking"
	"github.com/okian/rallyboard/pkg/logger"
)

const stdinArg = "-"

var version = "v0.0.1-default"

// Flag names shared across commands.
const (
	debugFlag     = "debug"
	tierSizesFlag = "tier-sizes"
	formatFlag    = "format"
)

// app carries the state resolved by the root command's Before hook.
type app struct {
	layout   ranking.Layout
	format   export.Format
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	log      logger.Logger
	renderer *terminal.Renderer
}

// Run executes rallyctl with args, reading piped input from in and
// writing results to out. Logs go to errOut.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{in: in, out: out, errOut: errOut, renderer: terminal.NewRenderer()}
	return a.command().Run(ctx, args)
}

func (a *app) command() *urfave.Command {
	return &urfave.Command{
		Name:      "rallyctl",
		Version:   version,
		Usage:     "Rank rally leaderboard lines and group them into tiers",
		ArgsUsage: "[FILE|-]",
		Writer:    a.out,
		ErrWriter: a.errOut,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  debugFlag,
				Usage: "Prints verbose logs, including every skipped line",
			},
			&urfave.StringFlag{
				Name:  tierSizesFlag,
				Usage: "Comma separated sizes of every tier but the last",
				Value: "12,20",
			},
			&urfave.StringFlag{
				Name:  formatFlag,
				Usage: "Output format [table, json, yaml, lines]",
				Value: string(export.FormatTable),
			},
		},
		Commands: []*urfave.Command{
			a.rankCmd(),
			a.tiersCmd(),
			a.linesCmd(),
			a.exportCmd(),
			a.verifyCmd(),
		},
	}
}

// setup resolves the global flags. It runs inside each subcommand so flags
// given after the subcommand name are honoured too.
func (a *app) setup(cmd *urfave.Command) error {
	if err := logger.Init(logger.WithOutput(a.errOut)); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	level := "warn"
	if cmd.Bool(debugFlag) {
		level = "debug"
	}
	_ = logger.SetLevelString(level)
	a.log = logger.Get().Named("rallyctl")

	layout, err := parseTierSizes(cmd.String(tierSizesFlag))
	if err != nil {
		return err
	}
	a.layout = layout

	format, err := export.ParseFormat(cmd.String(formatFlag))
	if err != nil {
		return err
	}
	a.format = format
	return nil
}

// withBoard wraps an action that works on the ranked input.
func (a *app) withBoard(fn func(context.Context, *urfave.Command, *repository.Board) error) urfave.ActionFunc {
	return func(ctx context.Context, cmd *urfave.Command) error {
		if err := a.setup(cmd); err != nil {
			return err
		}
		board, err := a.load(ctx, cmd)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, board)
	}
}

// parseTierSizes reads "12,20" into a layout. An empty value keeps every
// entry in a single tier.
func parseTierSizes(s string) (ranking.Layout, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ranking.Layout{}, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ranking.Layout{}, fmt.Errorf("%w: %q", ErrInvalidTierSizes, s)
		}
		sizes = append(sizes, n)
	}
	layout, err := ranking.NewLayout(sizes...)
	if err != nil {
		return ranking.Layout{}, fmt.Errorf("%w: %w", ErrInvalidTierSizes, err)
	}
	return layout, nil
}

// load reads the input named by the first argument and ranks it. No
// argument or "-" reads the piped input.
func (a *app) load(ctx context.Context, cmd *urfave.Command) (*repository.Board, error) {
	path := cmd.Args().First()

	var (
		lines []string
		err   error
	)
	if path == "" || path == stdinArg {
		path = "stdin"
		in := a.in
		if in == nil {
			in = os.Stdin
		}
		lines, err = parser.ReadLines(in)
	} else {
		lines, err = source.ReadFile(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	set, report := parser.ParseReport(lines)
	for _, d := range report.Diagnostics {
		a.log.Debug(ctx, "line not ranked as written",
			logger.Int("line", d.Line),
			logger.String("outcome", string(d.Outcome)),
			logger.String("text", d.Text))
	}
	a.log.Debug(ctx, "parsed input",
		logger.String("source", path),
		logger.Int("lines", report.Lines),
		logger.Int("entries", set.Len()),
		logger.Int("replaced", report.Replaced))

	return repository.NewBoard(set, a.layout, repository.WithReport(report), repository.WithSource(path)), nil
}
