package export

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/rallyboard/internal/domain/types"
)

const maxLabelRunes = 14

// ChartOptions shapes the bar chart.
type ChartOptions struct {
	Title  string
	Width  int
	Height int
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Title == "" {
		o.Title = "Highest Damage"
	}
	if o.Width <= 0 {
		o.Width = 1024
	}
	if o.Height <= 0 {
		o.Height = 512
	}
	return o
}

// Chart renders rows as a PNG bar chart in the given order. An empty board
// renders a single labelled empty bar.
func Chart(w io.Writer, rows []types.Entry, opts ChartOptions) error {
	opts = opts.withDefaults()

	bars := make([]chart.Value, 0, len(rows))
	top := 0.0
	for _, r := range rows {
		bars = append(bars, chart.Value{
			Label: shortLabel(r.Name),
			Value: r.Score,
			Style: chart.Style{
				FillColor:   tierColor(r.Tier),
				StrokeColor: tierColor(r.Tier),
			},
		})
		top = max(top, r.Score)
	}
	if len(bars) == 0 {
		bars = append(bars, chart.Value{Label: "no entries", Value: 0})
	}
	if top <= 0 {
		top = 1
	}

	barWidth := max(4, min(60, opts.Width/(2*len(bars))))
	graph := chart.BarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func shortLabel(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelRunes {
		return name
	}
	return string(r[:maxLabelRunes-3]) + "..."
}

func tierColor(tier int) drawing.Color {
	switch tier {
	case 1:
		return drawing.ColorFromHex("d4a017")
	case 2:
		return drawing.ColorFromHex("4f81bd")
	default:
		return drawing.ColorFromHex("9e9e9e")
	}
}
