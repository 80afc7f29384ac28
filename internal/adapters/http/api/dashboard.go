// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").
		Funcs(template.FuncMap{
			"ago":   func(t time.Time) string { return humanize.Time(t) },
			"comma": func(n int) string { return humanize.Comma(int64(n)) },
		}).
		ParseFS(templateFS, "templates/dashboard.html"),
)

// DashboardDependencies defines the interface the dashboard reads from.
type DashboardDependencies interface {
	Board(ctx context.Context) *repository.Board
}

// DashboardHandler renders the tiers as an HTML page.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

type dashboardView struct {
	Revision string
	LoadedAt time.Time
	Source   string
	Entries  int
	Lines    int
	Skipped  int
	Tiers    []types.Tier
}

// HandleDashboard handles GET / requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"

	board := h.deps.Board(r.Context())
	view := dashboardView{
		Revision: board.Revision,
		LoadedAt: board.LoadedAt,
		Source:   board.Source,
		Entries:  board.Len(),
		Lines:    board.Report.Lines,
		Skipped:  board.Report.Count(parser.OutcomeDropped) + board.Report.Count(parser.OutcomeMalformed),
		Tiers:    types.FromTiers(board.Tiers),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
