package api

import (
	"github.com/okian/rallyboard/internal/adapters/export"
	"github.com/okian/rallyboard/pkg/logger"
)

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxLimit      int
	parseRate     float64
	parseBurst    int
	maxParseBytes int64
	chart         ChartConfig
	log           logger.Logger
}

// ChartConfig shapes GET /export/chart.png.
type ChartConfig struct {
	TopN int
	export.ChartOptions
}

func defaultServerOptions() serverOptions {
	return serverOptions{
		maxLimit:      500,
		parseRate:     5,
		parseBurst:    10,
		maxParseBytes: 1 << 20,
		chart:         ChartConfig{TopN: 12},
	}
}

// WithMaxLeaderboardLimit caps GET /leaderboard?limit.
func WithMaxLeaderboardLimit(n int) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithParseRateLimit bounds POST /parse per client address. A rate of zero
// disables the limit.
func WithParseRateLimit(perSecond float64, burst int) ServerOption {
	return func(o *serverOptions) {
		if burst > 0 {
			o.parseRate = perSecond
			o.parseBurst = burst
		}
	}
}

// WithMaxParseBytes caps the POST /parse body.
func WithMaxParseBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxParseBytes = n
		}
	}
}

// WithChart sets how many entries the chart shows and its size.
func WithChart(topN, width, height int) ServerOption {
	return func(o *serverOptions) {
		if topN > 0 {
			o.chart.TopN = topN
		}
		o.chart.Width = width
		o.chart.Height = height
	}
}

// WithLogger enables request logging.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		o.log = l
	}
}
