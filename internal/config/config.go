// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a YAML file and RALLY_* environment variables on top.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile optionally mirrors logs into a rotated JSON file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataFile is the pasted leaderboard text the service ranks.
	DataFile string `koanf:"data_file"`

	// Watch rebuilds the board whenever DataFile changes.
	Watch bool `koanf:"watch"`

	// WatchDebounceMS coalesces bursts of file events.
	WatchDebounceMS int `koanf:"watch_debounce_ms"`

	// TierSizes sets the size of every tier but the last. Empty means 12,20.
	TierSizes []int `koanf:"tier_sizes"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ParseRateLimit and ParseBurst bound POST /parse per second.
	ParseRateLimit float64 `koanf:"parse_rate_limit"`
	ParseBurst     int     `koanf:"parse_burst"`

	// MaxParseBytes caps the POST /parse body.
	MaxParseBytes int64 `koanf:"max_parse_bytes"`

	// ChartTopN, ChartWidth and ChartHeight shape GET /export/chart.png.
	ChartTopN   int `koanf:"chart_top_n"`
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// Overrides are applied after the data file, in order.
	Overrides []Override `koanf:"overrides"`
}

// Override is a manual entry update applied on top of the parsed file.
type Override struct {
	Name    string  `koanf:"name"`
	Score   float64 `koanf:"score"`
	Partner string  `koanf:"partner"`
}

// Validate implements validation.Validatable.
func (o Override) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Name, validation.Required),
	)
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		DataFile:            "data/leaderboard.txt",
		Watch:               true,
		WatchDebounceMS:     250,
		MaxLeaderboardLimit: 500,
		ParseRateLimit:      5,
		ParseBurst:          10,
		MaxParseBytes:       1 << 20,
		ChartTopN:           12,
		ChartWidth:          1024,
		ChartHeight:         512,
	}
}

// WatchDebounce returns WatchDebounceMS as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.WatchDebounceMS, validation.Min(0)),
		validation.Field(&c.TierSizes, validation.Each(validation.Required, validation.Min(1))),
		validation.Field(&c.MaxLeaderboardLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.ParseRateLimit, validation.Min(0.0)),
		validation.Field(&c.ParseBurst, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxParseBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.ChartTopN, validation.Required, validation.Min(1)),
		validation.Field(&c.ChartWidth, validation.Required, validation.Min(100)),
		validation.Field(&c.ChartHeight, validation.Required, validation.Min(100)),
		validation.Field(&c.Overrides),
	)
}
