// Package grouping rolls records up by asset and hour-of-day and ranks the
// resulting groups.
package grouping

import (
	"math"
	"sort"

	"tradelens/internal/analysis/stats"
	"tradelens/internal/models"
)

// HourPolicy tunes the cross-cutting hour flags.
type HourPolicy struct {
	// StrongestTopN caps how many positive-expectancy hours are reported as
	// strongest, ordered by expectancy.
	StrongestTopN int
	// EarlyBandStart/End delimit the early-session band, inclusive hours.
	EarlyBandStart int
	EarlyBandEnd   int
	// DispersionMin is the win-rate spread (percentage points) inside the
	// early band that counts as high dispersion.
	DispersionMin float64
}

// DefaultHourPolicy returns the standard hour-flag tuning: top-3 strongest
// hours and a 09:00-10:59 early band.
func DefaultHourPolicy() HourPolicy {
	return HourPolicy{
		StrongestTopN:  3,
		EarlyBandStart: 9,
		EarlyBandEnd:   10,
		DispersionMin:  50,
	}
}

// ByAsset groups records per asset, computes each group's metrics and
// assigns the three rankings. Groups appear in discovery order; rankings are
// stable so ties keep that order.
func ByAsset(records []models.TradeRecord) []models.AssetMetrics {
	var order []string
	grouped := make(map[string][]models.TradeRecord)
	for _, r := range records {
		if _, seen := grouped[r.Asset]; !seen {
			order = append(order, r.Asset)
		}
		grouped[r.Asset] = append(grouped[r.Asset], r)
	}

	assets := make([]models.AssetMetrics, 0, len(order))
	for _, asset := range order {
		assets = append(assets, models.AssetMetrics{
			Asset:        asset,
			GroupMetrics: computeGroup(grouped[asset]),
		})
	}

	rank(assets, func(a *models.AssetMetrics) float64 { return a.NetPnL },
		func(a *models.AssetMetrics, r int) { a.RankByNetPnL = r })
	rank(assets, func(a *models.AssetMetrics) float64 { return a.ProfitFactor },
		func(a *models.AssetMetrics, r int) { a.RankByProfitFactor = r })
	rank(assets, func(a *models.AssetMetrics) float64 { return a.Expectancy },
		func(a *models.AssetMetrics, r int) { a.RankByExpectancy = r })

	return assets
}

// ByHour groups records by the hour-of-day of their timestamp. Records whose
// timestamp failed to parse are excluded here but still count everywhere
// else. Only active hours (at least one trade) are returned, ascending.
func ByHour(records []models.TradeRecord) []models.HourMetrics {
	grouped := make(map[int][]models.TradeRecord)
	for _, r := range records {
		if !r.HasTimestamp() {
			continue
		}
		h := r.Timestamp.Hour()
		grouped[h] = append(grouped[h], r)
	}

	hours := make([]models.HourMetrics, 0, len(grouped))
	for h := 0; h < 24; h++ {
		if recs, ok := grouped[h]; ok {
			hours = append(hours, models.HourMetrics{
				Hour:         h,
				GroupMetrics: computeGroup(recs),
			})
		}
	}
	return hours
}

// Flags derives the cross-cutting hour signals from the active-hour metrics.
// The selection is a pure function of the metrics, never a fixed hour list.
func Flags(hours []models.HourMetrics, policy HourPolicy) models.HourFlags {
	flags := models.HourFlags{
		NegativeExpectancyHours: []int{},
		StrongestHours:          []int{},
	}

	for _, h := range hours {
		if h.TotalTrades > 0 && h.Expectancy < 0 {
			flags.NegativeExpectancyHours = append(flags.NegativeExpectancyHours, h.Hour)
		}
	}

	flags.StrongestHours = strongestHours(hours, policy.StrongestTopN)
	flags.EarlySessionVolatility = earlySessionVolatile(hours, policy)
	return flags
}

// strongestHours picks the top-N active hours by expectancy, restricted to
// positive expectancy. Stable sort keeps ascending hour order on ties.
func strongestHours(hours []models.HourMetrics, topN int) []int {
	candidates := make([]models.HourMetrics, 0, len(hours))
	for _, h := range hours {
		if h.TotalTrades > 0 && h.Expectancy > 0 {
			candidates = append(candidates, h)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Expectancy > candidates[j].Expectancy
	})

	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	strongest := make([]int, 0, len(candidates))
	for _, h := range candidates {
		strongest = append(strongest, h.Hour)
	}
	return strongest
}

// earlySessionVolatile reports whether the early-session band shows negative
// expectancy or a wide win-rate spread between its hours.
func earlySessionVolatile(hours []models.HourMetrics, policy HourPolicy) bool {
	minRate, maxRate := math.Inf(1), math.Inf(-1)
	inBand := 0
	for _, h := range hours {
		if h.Hour < policy.EarlyBandStart || h.Hour > policy.EarlyBandEnd {
			continue
		}
		inBand++
		if h.Expectancy < 0 {
			return true
		}
		if h.WinRate < minRate {
			minRate = h.WinRate
		}
		if h.WinRate > maxRate {
			maxRate = h.WinRate
		}
	}
	return inBand > 1 && maxRate-minRate >= policy.DispersionMin
}

// computeGroup derives the shared group rollup, reusing the scalar metric
// definitions so degenerate ratios resolve the same way everywhere.
func computeGroup(records []models.TradeRecord) models.GroupMetrics {
	m := stats.Compute(records)
	return models.GroupMetrics{
		TotalTrades:   m.TotalTrades,
		WinningTrades: m.WinningTrades,
		LosingTrades:  m.LosingTrades,
		WinRate:       m.WinRate,
		AvgProfit:     m.AvgProfit,
		AvgLoss:       m.AvgLoss,
		ProfitFactor:  m.ProfitFactor,
		NetPnL:        m.NetPnL,
		Expectancy:    stats.Expectancy(m.WinRate, m.AvgProfit, m.AvgLoss),
	}
}

// rank assigns 1-based descending ranks for one key without disturbing the
// discovery order of the input slice.
func rank(assets []models.AssetMetrics, key func(*models.AssetMetrics) float64, set func(*models.AssetMetrics, int)) {
	idx := make([]int, len(assets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return key(&assets[idx[a]]) > key(&assets[idx[b]])
	})
	for pos, i := range idx {
		set(&assets[i], pos+1)
	}
}
