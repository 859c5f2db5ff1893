// Package bias applies behavioral-bias detection rules over a trade snapshot.
package bias

import (
	"tradelens/internal/analysis/stats"
	"tradelens/internal/models"
)

// Snapshot is the immutable input every rule evaluates against. Rules never
// mutate it, which keeps them independent and order-insensitive.
type Snapshot struct {
	Records     []models.TradeRecord
	Metrics     models.Metrics
	AssetCounts map[string]int
	Equity      []float64
}

// Thresholds holds the tuning constants for every rule.
type Thresholds struct {
	LossAversionTrigger float64 // avgLoss/avgProfit ratio that fires the rule
	LossAversionHigh    float64
	LossAversionMedium  float64
	OvertradingHigh     float64 // trades per asset
	OvertradingMedium   float64
	RecencySplit        float64 // chronological split fraction
	RecencyHighDrop     float64 // tail drop relative to head magnitude
	DrawdownHigh        float64 // percent
	DrawdownMedium      float64
	ConcentrationMin    float64 // percent of trades in the dominant asset
	StrategyMinWinRate  float64 // percent
	ProfitFloor         float64 // guards ratio rules against avgProfit ~ 0
}

// DefaultThresholds returns the standard rule tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LossAversionTrigger: 1.5,
		LossAversionHigh:    1.75,
		LossAversionMedium:  1.2,
		OvertradingHigh:     30,
		OvertradingMedium:   15,
		RecencySplit:        0.8,
		RecencyHighDrop:     0.4,
		DrawdownHigh:        20,
		DrawdownMedium:      10,
		ConcentrationMin:    25,
		StrategyMinWinRate:  40,
		ProfitFloor:         0.01,
	}
}

// Rule evaluates one behavioral signal. It either fires with a tile or stays
// silent.
type Rule func(snap *Snapshot, t Thresholds) (models.BiasInsight, bool)

// rules is the full detection set. Order only affects presentation order of
// the resulting tiles, never their content.
var rules = []Rule{
	DetectLossAversion,
	DetectOvertrading,
	DetectRecency,
	DetectDrawdown,
	DetectConcentration,
	DetectStrategyEffectiveness,
}

// NewSnapshot builds the shared rule input from a record set.
func NewSnapshot(records []models.TradeRecord, metrics models.Metrics) *Snapshot {
	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Asset]++
	}
	return &Snapshot{
		Records:     records,
		Metrics:     metrics,
		AssetCounts: counts,
		Equity:      stats.EquityCurve(records),
	}
}

// Detect evaluates every rule against one snapshot and collects the tiles
// that fired. An empty result is a valid outcome (clean trading pattern).
func Detect(records []models.TradeRecord, metrics models.Metrics, t Thresholds) []models.BiasInsight {
	snap := NewSnapshot(records, metrics)
	insights := make([]models.BiasInsight, 0, len(rules))
	for _, rule := range rules {
		if tile, ok := rule(snap, t); ok {
			insights = append(insights, tile)
		}
	}
	return insights
}

// Dominant returns the most severe tile, ties broken by the higher strength
// metric. ok is false for an empty insight set.
func Dominant(insights []models.BiasInsight) (models.BiasInsight, bool) {
	if len(insights) == 0 {
		return models.BiasInsight{}, false
	}
	best := insights[0]
	for _, tile := range insights[1:] {
		if tile.Severity.Rank() > best.Severity.Rank() ||
			(tile.Severity.Rank() == best.Severity.Rank() && tile.Metric > best.Metric) {
			best = tile
		}
	}
	return best, true
}

func clampMetric(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
