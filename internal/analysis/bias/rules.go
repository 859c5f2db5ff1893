package bias

import (
	"fmt"
	"math"

	"tradelens/internal/models"
)

// DetectLossAversion fires when the average loss dwarfs the average win,
// the disposition-effect signature of holding losers and cutting winners.
// Fire-or-silent: a healthy loss-to-win ratio emits nothing.
func DetectLossAversion(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	m := snap.Metrics
	if m.TotalTrades == 0 || m.AvgLoss == 0 {
		return models.BiasInsight{}, false
	}

	ratio := m.AvgLoss / math.Max(m.AvgProfit, t.ProfitFloor)
	if ratio <= t.LossAversionTrigger {
		return models.BiasInsight{}, false
	}

	severity := models.SeverityLow
	if ratio > t.LossAversionHigh {
		severity = models.SeverityHigh
	} else if ratio > t.LossAversionMedium {
		severity = models.SeverityMedium
	}

	return models.BiasInsight{
		Type:     models.BiasLossAversion,
		Severity: severity,
		Description: fmt.Sprintf(
			"Average loss (%.2f) is %.1fx the average win (%.2f). Losers are being held much longer than winners.",
			m.AvgLoss, ratio, m.AvgProfit),
		Recommendation: "Set a stop-loss before entry and honor it. Aim to keep the average loss below the average win.",
		Metric:         clampMetric(ratio / 3 * 100),
	}, true
}

// DetectOvertrading reports trading pace as trades per traded asset. Unlike
// the other rules it emits a tile whenever trades exist, so the trader gets
// a pace signal even when pace is healthy.
func DetectOvertrading(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	total := snap.Metrics.TotalTrades
	if total == 0 || len(snap.AssetCounts) == 0 {
		return models.BiasInsight{}, false
	}

	pace := float64(total) / float64(len(snap.AssetCounts))
	severity := models.SeverityLow
	desc := fmt.Sprintf("Pace of %.1f trades per asset is within a healthy range.", pace)
	rec := "Current pace looks sustainable. Keep position sizing consistent."
	if pace > t.OvertradingHigh {
		severity = models.SeverityHigh
		desc = fmt.Sprintf("Pace of %.1f trades per asset suggests heavy churning.", pace)
		rec = "Cut trade frequency sharply. Define a daily trade cap and a written setup checklist."
	} else if pace > t.OvertradingMedium {
		severity = models.SeverityMedium
		desc = fmt.Sprintf("Pace of %.1f trades per asset is elevated.", pace)
		rec = "Review whether each entry met your setup criteria or was impulse-driven."
	}

	return models.BiasInsight{
		Type:           models.BiasOvertrading,
		Severity:       severity,
		Description:    desc,
		Recommendation: rec,
		Metric:         clampMetric(pace * 2),
	}, true
}

// DetectRecency splits the chronologically ordered set at the 80th
// percentile index and compares recent performance against the baseline.
// It needs at least two records so both partitions are non-empty.
func DetectRecency(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	n := len(snap.Records)
	if n < 2 {
		return models.BiasInsight{}, false
	}

	split := int(math.Floor(float64(n) * t.RecencySplit))
	if split < 1 {
		split = 1
	}
	headMean := meanPnL(snap.Records[:split])
	tailMean := meanPnL(snap.Records[split:])
	momentum := tailMean - headMean
	headMag := math.Abs(headMean)

	severity := models.SeverityLow
	desc := "Recent results are holding up against the longer-run baseline."
	rec := "No momentum decay detected. Keep logging trades so the trend stays visible."
	if momentum < 0 {
		severity = models.SeverityMedium
		desc = fmt.Sprintf("Recent trades average %.2f versus %.2f earlier, a negative shift.", tailMean, headMean)
		rec = "Recent outcomes may be steering decisions. Re-anchor on the full history before sizing the next trade."
		if headMag > 0 && -momentum > headMag*t.RecencyHighDrop {
			severity = models.SeverityHigh
			rec = "Performance is decaying sharply. Step back, reduce size, and review what changed in recent sessions."
		}
	}

	dropPct := 0.0
	if headMag > 0 {
		dropPct = math.Abs(momentum) / headMag * 100
	}

	return models.BiasInsight{
		Type:           models.BiasRecency,
		Severity:       severity,
		Description:    desc,
		Recommendation: rec,
		Metric:         clampMetric(dropPct),
	}, true
}

// DetectDrawdown tracks the running equity peak and reports the deepest
// percentage decline observed anywhere in the series.
func DetectDrawdown(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	if len(snap.Equity) == 0 {
		return models.BiasInsight{}, false
	}

	maxDD := MaxDrawdown(snap.Equity)
	severity := models.SeverityLow
	rec := "Drawdown is contained. Keep risking a fixed small fraction per trade."
	if maxDD > t.DrawdownHigh {
		severity = models.SeverityHigh
		rec = "Deep drawdown detected. Halve position size until the equity curve recovers its prior peak."
	} else if maxDD > t.DrawdownMedium {
		severity = models.SeverityMedium
		rec = "Drawdown is building. Tighten risk per trade and avoid doubling down to recover."
	}

	return models.BiasInsight{
		Type:           models.BiasDrawdown,
		Severity:       severity,
		Description:    fmt.Sprintf("Maximum peak-to-trough drawdown is %.1f%% of equity.", maxDD),
		Recommendation: rec,
		Metric:         clampMetric(maxDD),
	}, true
}

// DetectConcentration fires when a single asset dominates the trade count,
// a confirmation-bias signature of returning to a familiar instrument.
func DetectConcentration(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	total := snap.Metrics.TotalTrades
	if total == 0 {
		return models.BiasInsight{}, false
	}

	dominant := ""
	dominantCount := 0
	for asset, count := range snap.AssetCounts {
		if count > dominantCount || (count == dominantCount && asset < dominant) {
			dominant = asset
			dominantCount = count
		}
	}

	share := 100 * float64(dominantCount) / float64(total)
	if share <= t.ConcentrationMin {
		return models.BiasInsight{}, false
	}

	return models.BiasInsight{
		Type:     models.BiasConcentration,
		Severity: models.SeverityLow,
		Description: fmt.Sprintf(
			"%s accounts for %.1f%% of all trades. Familiarity may be substituting for edge.",
			dominant, share),
		Recommendation: "Ask what evidence, beyond familiarity, supports each trade in the dominant asset.",
		Metric:         clampMetric(share),
	}, true
}

// DetectStrategyEffectiveness flags a win rate low enough that the current
// approach is unlikely to carry positive expectancy.
func DetectStrategyEffectiveness(snap *Snapshot, t Thresholds) (models.BiasInsight, bool) {
	m := snap.Metrics
	if m.TotalTrades == 0 || m.WinRate >= t.StrategyMinWinRate {
		return models.BiasInsight{}, false
	}

	return models.BiasInsight{
		Type:     models.BiasStrategy,
		Severity: models.SeverityHigh,
		Description: fmt.Sprintf(
			"Win rate of %.1f%% is below the %.0f%% effectiveness floor.",
			m.WinRate, t.StrategyMinWinRate),
		Recommendation: "Pause live trading and backtest the setup. A strategy this far underwater needs rework, not more repetitions.",
		Metric:         clampMetric(100 - m.WinRate),
	}, true
}

// MaxDrawdown computes the largest percentage decline from any running peak
// in the equity series. Peaks at or below zero are skipped so the ratio is
// always defined.
func MaxDrawdown(equity []float64) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func meanPnL(records []models.TradeRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.ProfitLoss
	}
	return sum / float64(len(records))
}
