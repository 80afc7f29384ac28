package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/adapters/export"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/types"
)

// ParseDependencies defines the interface for ad-hoc parsing.
type ParseDependencies interface {
	Evaluate(ctx context.Context, lines []string) *repository.Board
}

// ParseHandler ranks a pasted list without publishing it.
type ParseHandler struct {
	deps     ParseDependencies
	maxBytes int64
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(deps ParseDependencies, maxBytes int64) *ParseHandler {
	return &ParseHandler{deps: deps, maxBytes: maxBytes}
}

type parseResponse struct {
	Entries []Entry       `json:"entries" yaml:"entries"`
	Tiers   []Tier        `json:"tiers" yaml:"tiers"`
	Report  parser.Report `json:"report" yaml:"report"`
}

// HandleParse handles POST /parse requests. The body is plain text, one
// entry per line. ?format=lines returns the canonical lines instead of JSON
// and ?format=yaml returns YAML.
func (h *ParseHandler) HandleParse(w http.ResponseWriter, r *http.Request) {
	const op = "api.parse"

	format := export.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := export.ParseFormat(f)
		if err != nil || parsed == export.FormatTable {
			writeErr(w, WrapKind(op, ErrBadRequest, export.ErrUnknownFormat))
			return
		}
		format = parsed
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	lines, err := parser.ReadLines(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, WrapKind(op, ErrPayloadTooLarge, err))
			return
		}
		writeErr(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	board := h.deps.Evaluate(r.Context(), lines)

	switch format {
	case export.FormatLines:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if out := board.Lines(); len(out) > 0 {
			_, _ = w.Write([]byte(strings.Join(out, "\n") + "\n"))
		}
	case export.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_ = export.YAML(w, newParseResponse(board))
	default:
		writeJSON(w, http.StatusOK, newParseResponse(board))
	}
}

func newParseResponse(b *repository.Board) parseResponse {
	return parseResponse{
		Entries: types.FromRankedSlice(b.Entries),
		Tiers:   types.FromTiers(b.Tiers),
		Report:  b.Report,
	}
}
