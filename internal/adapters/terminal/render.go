package terminal

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/rallyboard/internal/domain/types"
)

const (
	colRank = iota
	colName
	colDisplay
)

var headers = []string{"Rank", "Rally Creator", "Highest Damage (with Person)"}

// Renderer draws rows and tiers with a fixed set of styles.
type Renderer struct {
	styles Styles
}

// NewRenderer creates a Renderer with DefaultStyles adjusted by opts.
func NewRenderer(opts ...func(*Styles)) *Renderer {
	s := DefaultStyles()
	for _, opt := range opts {
		opt(&s)
	}
	return &Renderer{styles: s}
}

// Rows renders rows as one table. An empty slice renders a muted notice.
func (r *Renderer) Rows(rows []types.Entry) string {
	if len(rows) == 0 {
		return r.styles.Muted.Render("no entries")
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.styles.Border).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.styles.Header
			case col == colRank:
				return r.styles.Rank
			default:
				return r.styles.Cell
			}
		})

	for _, e := range rows {
		t.Row(strconv.Itoa(e.Rank), e.Name, e.Display)
	}
	return t.Render()
}

// Tiers renders each tier under its name.
func (r *Renderer) Tiers(tiers []types.Tier) string {
	blocks := make([]string, 0, len(tiers))
	for _, t := range tiers {
		title := r.styles.Title.Render(t.Name) + " " +
			r.styles.Muted.Render("("+strconv.Itoa(len(t.Entries))+")")
		blocks = append(blocks, title+"\n"+r.Rows(t.Entries))
	}
	return strings.Join(blocks, "\n\n")
}
