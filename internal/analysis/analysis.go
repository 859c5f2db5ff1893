// Package analysis orchestrates the full analytics pass over a trade log.
package analysis

import (
	"tradelens/internal/analysis/bias"
	"tradelens/internal/analysis/grouping"
	"tradelens/internal/analysis/stats"
	"tradelens/internal/models"
)

// Options tunes a single analysis pass.
type Options struct {
	Thresholds bias.Thresholds
	HourPolicy grouping.HourPolicy
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		Thresholds: bias.DefaultThresholds(),
		HourPolicy: grouping.DefaultHourPolicy(),
	}
}

// Result is the complete analytics output for one record set. It is plain
// immutable data; every recompute produces a fresh Result.
type Result struct {
	Metrics   models.Metrics        `json:"metrics"`
	Insights  []models.BiasInsight  `json:"insights"`
	Assets    []models.AssetMetrics `json:"assets"`
	Hours     []models.HourMetrics  `json:"hours"`
	HourFlags models.HourFlags      `json:"hour_flags"`
}

// Analyze runs the full pipeline: scalar metrics, bias detection, asset and
// hour breakdowns with rankings and hour flags. It is a pure function of the
// record set; an empty set yields neutral, well-formed output.
func Analyze(records []models.TradeRecord, opts Options) Result {
	metrics := stats.Compute(records)
	hours := grouping.ByHour(records)
	return Result{
		Metrics:   metrics,
		Insights:  bias.Detect(records, metrics, opts.Thresholds),
		Assets:    grouping.ByAsset(records),
		Hours:     hours,
		HourFlags: grouping.Flags(hours, opts.HourPolicy),
	}
}
