// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/rallyboard/internal/adapters/repository"
	"github.com/okian/rallyboard/internal/adapters/source"
	"github.com/okian/rallyboard/internal/domain/dedupe"
	"github.com/okian/rallyboard/internal/domain/model"
	"github.com/okian/rallyboard/internal/domain/parser"
	"github.com/okian/rallyboard/internal/domain/ranking"
	"github.com/okian/rallyboard/internal/domain/types"
	"github.com/okian/rallyboard/pkg/logger"
	"github.com/okian/rallyboard/pkg/metrics"
)

// Service loads the data file, publishes ranked boards and answers queries
// against the current board.
type Service struct {
	mu sync.RWMutex
	// serializes reloads so boards are published in read order
	reloadMu sync.Mutex

	// Core components
	board   *repository.SnapshotStore
	watcher *source.Watcher

	// Configuration
	dataFile  string
	layout    ranking.Layout
	overrides []model.Entry
	watch     bool
	debounce  time.Duration

	// State
	started        bool
	reloads        atomic.Uint64
	reloadFailures atomic.Uint64
	lastError      atomic.Pointer[string]

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDataFile sets the leaderboard text file to load.
func WithDataFile(path string) Option {
	return func(s *Service) {
		s.dataFile = path
	}
}

// WithLayout sets the tier layout. Invalid layouts are ignored.
func WithLayout(layout ranking.Layout) Option {
	return func(s *Service) {
		if layout.Validate() == nil {
			s.layout = layout
		}
	}
}

// WithOverrides sets entries applied after the data file, in order.
func WithOverrides(entries ...model.Entry) Option {
	return func(s *Service) {
		s.overrides = append([]model.Entry(nil), entries...)
	}
}

// WithWatch enables rebuilding the board when the data file changes.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithDebounce sets the quiet period before a file change triggers a reload.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		layout:   ranking.DefaultLayout,
		debounce: 250 * time.Millisecond,
		logger:   nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	s.board = repository.NewSnapshotStore(context.Background(), repository.WithLayout(s.layout))
	return s
}

// Start loads the data file and, when enabled, starts watching it.
// A failed initial load leaves the empty board in place; the watcher
// picks the file up once it appears.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting leaderboard service...",
		logger.String("dataFile", s.dataFile),
		logger.Any("tierSizes", s.layout.Sizes),
	)

	for _, o := range s.overrides {
		s.logger.Debug(ctx, "override configured",
			logger.String("name", o.Name),
			logger.Float64("score", o.Score),
			logger.String("partner", o.Partner),
		)
	}

	if _, err := s.reload(ctx); err != nil {
		s.logger.Warn(ctx, "initial load failed, serving an empty board", logger.Error(err))
	}

	if s.watch && s.dataFile != "" {
		w, err := source.NewWatcher(s.dataFile, s.onFileChange,
			source.WithDebounce(s.debounce),
			source.WithLogger(s.logger.Named("watcher")),
		)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		s.watcher = w
		s.logger.Info(ctx, "watching data file", logger.String("path", w.Path()))
	}

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("entries", s.board.Count(ctx)),
		logger.Bool("watching", s.watcher != nil),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping leaderboard service...")

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn(context.Background(), "stop watcher", logger.Error(err))
		}
		s.watcher = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "leaderboard service stopped")
}

// Reload re-reads the data file and publishes a new board. On failure the
// previous board stays published.
func (s *Service) Reload(ctx context.Context) (*repository.Board, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}
	return s.reload(ctx)
}

func (s *Service) onFileChange(ctx context.Context) {
	if _, err := s.reload(ctx); err != nil {
		s.logger.Warn(ctx, "reload after file change failed", logger.Error(err))
	}
}

func (s *Service) reload(ctx context.Context) (*repository.Board, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	start := time.Now()

	lines, err := source.ReadFile(ctx, s.dataFile)
	if err != nil {
		s.reloadFailures.Add(1)
		msg := err.Error()
		s.lastError.Store(&msg)
		metrics.RecordReloadError()
		metrics.RecordErrorByComponent("service", "reload")
		return nil, fmt.Errorf("reload %s: %w", s.dataFile, err)
	}

	board := s.build(lines, s.dataFile, true)
	s.board.Publish(ctx, board)

	s.reloads.Add(1)
	s.lastError.Store(nil)
	elapsed := time.Since(start)
	metrics.RecordReload(float64(elapsed.Microseconds()) / 1000)
	for _, o := range parser.Outcomes {
		metrics.RecordLines(string(o), board.Report.Count(o))
	}

	s.logger.Info(ctx, "board published",
		logger.String("revision", board.Revision),
		logger.Int("entries", board.Len()),
		logger.Int("lines", board.Report.Lines),
		logger.Int("dropped", board.Report.Count(parser.OutcomeDropped)+board.Report.Count(parser.OutcomeMalformed)),
		logger.Duration("took", elapsed),
	)
	for _, d := range board.Report.Diagnostics {
		s.logger.Debug(ctx, "line skipped",
			logger.Int("line", d.Line),
			logger.String("outcome", string(d.Outcome)),
			logger.String("text", d.Text),
		)
	}
	return board, nil
}

// build parses lines into a board. Overrides are applied last so they win
// over the file.
func (s *Service) build(lines []string, src string, withOverrides bool) *repository.Board {
	set, report := parser.ParseReport(lines)
	if withOverrides {
		set = applyOverrides(set, s.overrides)
	}
	return repository.NewBoard(set, s.layout,
		repository.WithSource(src),
		repository.WithReport(report),
	)
}

func applyOverrides(set *dedupe.Set, overrides []model.Entry) *dedupe.Set {
	for _, e := range overrides {
		set.Put(e)
	}
	return set
}

// Evaluate ranks lines without publishing them. Overrides are not applied.
func (s *Service) Evaluate(_ context.Context, lines []string) *repository.Board {
	return s.build(lines, "request", false)
}

// Board returns the current board.
func (s *Service) Board(ctx context.Context) *repository.Board {
	return s.board.Current(ctx)
}

// Layout returns the tier layout.
func (s *Service) Layout() ranking.Layout {
	return s.layout
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.board.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.FromRankedSlice(entries), nil
}

// Rank returns the ranked entry for a name.
func (s *Service) Rank(ctx context.Context, name string) (types.Entry, error) {
	entry, err := s.board.Rank(ctx, name)
	if err != nil {
		return types.Entry{}, err
	}
	return types.FromRanked(entry), nil
}

// Tiers returns every tier of the current board.
func (s *Service) Tiers(ctx context.Context) []types.Tier {
	return types.FromTiers(s.board.Current(ctx).Tiers)
}

// Tier returns one tier by 1-based number.
func (s *Service) Tier(ctx context.Context, n int) (types.Tier, error) {
	t, err := s.board.Tier(ctx, n)
	if err != nil {
		return types.Tier{}, err
	}
	return types.FromTier(t), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := s.board.Current(context.Background())
	lines := make(map[string]int, len(parser.Outcomes))
	for _, o := range parser.Outcomes {
		lines[string(o)] = board.Report.Count(o)
	}
	tiers := make(map[string]int, len(board.Tiers))
	for _, t := range board.Tiers {
		tiers[t.Name] = len(t.Entries)
	}

	stats := map[string]interface{}{
		"started":        s.started,
		"dataFile":       s.dataFile,
		"watching":       s.watcher != nil,
		"tierSizes":      s.layout.Sizes,
		"revision":       board.Revision,
		"loadedAt":       board.LoadedAt,
		"entries":        board.Len(),
		"tiers":          tiers,
		"lines":          lines,
		"replaced":       board.Report.Replaced,
		"reloads":        s.reloads.Load(),
		"reloadFailures": s.reloadFailures.Load(),
	}
	if msg := s.lastError.Load(); msg != nil {
		stats["lastError"] = *msg
	}

	return stats
}
