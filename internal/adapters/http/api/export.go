package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/adapters/export"
	"github.com/okian/rallyboard/internal/domain/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportDependencies defines the interface for export operations.
type ExportDependencies interface {
	Board(ctx context.Context) *repository.Board
}

// ExportHandler serves the board in downloadable formats.
type ExportHandler struct {
	deps  ExportDependencies
	chart ChartConfig
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies, chart ChartConfig) *ExportHandler {
	return &ExportHandler{deps: deps, chart: chart}
}

// HandleLines handles GET /export/lines requests with the pasteable line form.
func (h *ExportHandler) HandleLines(w http.ResponseWriter, r *http.Request) {
	lines := h.deps.Board(r.Context()).Lines()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if len(lines) > 0 {
		_, _ = w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}
}

// HandleXLSX handles GET /export/xlsx requests.
func (h *ExportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_xlsx"

	board := h.deps.Board(r.Context())
	var buf bytes.Buffer
	if err := export.XLSX(&buf, types.FromTiers(board.Tiers)); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleChart handles GET /export/chart.png requests.
func (h *ExportHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_chart"

	board := h.deps.Board(r.Context())
	rows := types.FromRankedSlice(board.Top(h.chart.TopN))
	var buf bytes.Buffer
	if err := export.Chart(&buf, rows, h.chart.ChartOptions); err != nil {
		writeErr(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
