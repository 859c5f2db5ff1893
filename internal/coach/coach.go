// Package coach produces structured coaching reports from analysis output.
package coach

import (
	"context"

	"github.com/rs/zerolog"

	"tradelens/internal/config"
	"tradelens/internal/models"
)

// Request carries everything a producer may use to build a report.
type Request struct {
	Metrics      models.Metrics       `json:"metrics"`
	Insights     []models.BiasInsight `json:"insights"`
	Notes        string               `json:"trader_notes"`
	RecentTrades []models.TradeRecord `json:"recent_trades"`
}

// Producer generates a coaching report. Implementations must always return a
// well-formed report or an error, never a partial one; the caller stays
// agnostic to whether a model or the heuristic answered.
type Producer interface {
	Name() string
	Generate(ctx context.Context, req Request) (*models.CoachingReport, error)
}

// NewProducer wires the configured producer chain: a model-backed producer
// guarded by the heuristic fallback when an OpenAI key is present, otherwise
// the heuristic alone.
func NewProducer(cfg *config.Config, logger zerolog.Logger) Producer {
	heuristic := NewHeuristicProducer()
	if !cfg.Coach.Enabled || cfg.Credentials.OpenAI.APIKey == "" {
		return heuristic
	}
	model := NewModelProducer(cfg.Credentials.OpenAI.APIKey, cfg.Coach.Model)
	return NewFallbackProducer(model, heuristic, logger)
}

// FallbackProducer tries a primary producer and falls back to a secondary on
// any failure, so a report is always produced.
type FallbackProducer struct {
	primary   Producer
	secondary Producer
	logger    zerolog.Logger
}

// NewFallbackProducer creates a producer chain.
func NewFallbackProducer(primary, secondary Producer, logger zerolog.Logger) *FallbackProducer {
	return &FallbackProducer{primary: primary, secondary: secondary, logger: logger}
}

// Name identifies the chain by its primary producer.
func (p *FallbackProducer) Name() string {
	return p.primary.Name()
}

// Generate runs the primary producer and falls back on error.
func (p *FallbackProducer) Generate(ctx context.Context, req Request) (*models.CoachingReport, error) {
	report, err := p.primary.Generate(ctx, req)
	if err == nil {
		return report, nil
	}
	p.logger.Warn().
		Err(err).
		Str("producer", p.primary.Name()).
		Msg("Primary coaching producer failed, using fallback")
	return p.secondary.Generate(ctx, req)
}
