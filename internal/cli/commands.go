package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	urfave "github.com/urfave/cli/v3"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/adapters/export"
	"github.com/okian/rallyboard/internal/domain/types"
	"github.com/okian/rallyboard/pkg/logger"
)

const defaultChartTop = 12

const (
	limitFlag    = "limit"
	xlsxFlag     = "xlsx"
	chartFlag    = "chart"
	chartTopFlag = "chart-top"
)

func (a *app) rankCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "rank",
		Usage:     "Print the ranked board",
		ArgsUsage: "[FILE|-]",
		Flags: []urfave.Flag{
			&urfave.IntFlag{
				Name:  limitFlag,
				Usage: "Show only the first N entries (0 for all)",
			},
		},
		Action: a.withBoard(func(_ context.Context, cmd *urfave.Command, board *repository.Board) error {
			rows := board.Entries
			if n := cmd.Int(limitFlag); n > 0 {
				rows = board.Top(n)
			}
			return a.writeRows(types.FromRankedSlice(rows))
		}),
	}
}

func (a *app) tiersCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "tiers",
		Usage:     "Print the board grouped into tiers",
		ArgsUsage: "[FILE|-]",
		Action: a.withBoard(func(_ context.Context, _ *urfave.Command, board *repository.Board) error {
			return a.writeTiers(types.FromTiers(board.Tiers))
		}),
	}
}

func (a *app) linesCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "lines",
		Usage:     "Print canonical lines that can be pasted back in",
		ArgsUsage: "[FILE|-]",
		Action: a.withBoard(func(_ context.Context, _ *urfave.Command, board *repository.Board) error {
			return export.Lines(a.out, types.FromRankedSlice(board.Entries))
		}),
	}
}

func (a *app) exportCmd() *urfave.Command {
	return &urfave.Command{
		Name:      "export",
		Usage:     "Write the board as a spreadsheet and/or a chart",
		ArgsUsage: "[FILE|-]",
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:  xlsxFlag,
				Usage: "Write a spreadsheet to `PATH`",
			},
			&urfave.StringFlag{
				Name:  chartFlag,
				Usage: "Write a PNG bar chart to `PATH`",
			},
			&urfave.IntFlag{
				Name:  chartTopFlag,
				Usage: "Number of entries in the chart",
				Value: defaultChartTop,
			},
		},
		Action: a.withBoard(func(ctx context.Context, cmd *urfave.Command, board *repository.Board) error {
			xlsxPath := cmd.String(xlsxFlag)
			chartPath := cmd.String(chartFlag)
			if xlsxPath == "" && chartPath == "" {
				return ErrNoOutput
			}

			if xlsxPath != "" {
				tiers := types.FromTiers(board.Tiers)
				if err := a.writeFile(ctx, xlsxPath, func(w io.Writer) error { return export.XLSX(w, tiers) }); err != nil {
					return err
				}
			}
			if chartPath != "" {
				rows := types.FromRankedSlice(board.Top(cmd.Int(chartTopFlag)))
				if err := a.writeFile(ctx, chartPath, func(w io.Writer) error {
					return export.Chart(w, rows, export.ChartOptions{})
				}); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func (a *app) writeRows(rows []types.Entry) error {
	switch a.format {
	case export.FormatJSON:
		return export.JSON(a.out, rows)
	case export.FormatYAML:
		return export.YAML(a.out, rows)
	case export.FormatLines:
		return export.Lines(a.out, rows)
	default:
		_, err := fmt.Fprintln(a.out, a.renderer.Rows(rows))
		return err
	}
}

func (a *app) writeTiers(tiers []types.Tier) error {
	switch a.format {
	case export.FormatJSON:
		return export.JSON(a.out, tiers)
	case export.FormatYAML:
		return export.YAML(a.out, tiers)
	case export.FormatLines:
		// Tier headings are skipped on input, so this output parses back
		// into the same board.
		for _, t := range tiers {
			if _, err := fmt.Fprintln(a.out, t.Name); err != nil {
				return err
			}
			if err := export.Lines(a.out, t.Entries); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(a.out, a.renderer.Tiers(tiers))
		return err
	}
}

// writeFile creates path, fills it with write and reports its size.
func (a *app) writeFile(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	a.log.Debug(ctx, "export written", logger.String("path", path), logger.Int("bytes", int(info.Size())))
	_, err = fmt.Fprintf(a.out, "wrote %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
	return err
}
