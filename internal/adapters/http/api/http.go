// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/domain/types"
	"github.com/okian/rallyboard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Read operations expose leaderboard data.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, name string) (Entry, error)
	Tiers(ctx context.Context) []Tier
	Tier(ctx context.Context, n int) (Tier, error)

	// Board returns the current published board.
	Board(ctx context.Context) *repository.Board

	// Evaluate ranks lines without publishing them.
	Evaluate(ctx context.Context, lines []string) *repository.Board
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Tier mirrors the read shape of one tier.
type Tier = types.Tier

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	tiersHandler       *TiersHandler
	exportHandler      *ExportHandler
	parseHandler       *ParseHandler
	dashboardHandler   *DashboardHandler

	limiter *IPRateLimiter
	log     logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	o := defaultServerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	limit := rate.Limit(o.parseRate)
	if o.parseRate <= 0 {
		limit = rate.Inf
	}

	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps, o.maxLimit),
		rankHandler:        NewRankHandler(deps),
		tiersHandler:       NewTiersHandler(deps),
		exportHandler:      NewExportHandler(deps, o.chart),
		parseHandler:       NewParseHandler(deps, o.maxParseBytes),
		dashboardHandler:   NewDashboardHandler(deps),
		limiter:            NewIPRateLimiter(limit, o.parseBurst),
		log:                o.log,
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	r.Get("/tiers", MetricsMiddleware(s.tiersHandler.HandleGetTiers, "tiers"))
	r.Get("/tiers/{tier}", MetricsMiddleware(s.tiersHandler.HandleGetTier, "tier"))
	r.Get("/rank/{name}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))

	r.Route("/export", func(r chi.Router) {
		r.Get("/lines", MetricsMiddleware(s.exportHandler.HandleLines, "export_lines"))
		r.Get("/xlsx", MetricsMiddleware(s.exportHandler.HandleXLSX, "export_xlsx"))
		r.Get("/chart.png", MetricsMiddleware(s.exportHandler.HandleChart, "export_chart"))
	})

	r.With(RateLimitMiddleware(s.limiter)).
		Post("/parse", MetricsMiddleware(s.parseHandler.HandleParse, "parse"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, WrapKind("api.route", ErrNotFound, fmt.Errorf("no route for %s", r.URL.Path)))
	})
}

// Middlewares returns the request logging middleware bound to the server logger.
func (s *Server) Middlewares() []func(http.Handler) http.Handler {
	if s.log == nil {
		return nil
	}
	return []func(http.Handler) http.Handler{RequestLogger(s.log)}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeErr classifies err and writes it.
func writeErr(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}
