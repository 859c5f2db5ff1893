// Package stats computes aggregate performance statistics for a record set.
package stats

import (
	"math"

	"tradelens/internal/models"
)

// Compute derives the full Metrics shape from a normalized record set. An
// empty set yields the zero Metrics value; no input produces a fault.
func Compute(records []models.TradeRecord) models.Metrics {
	var m models.Metrics
	m.TotalTrades = len(records)
	if m.TotalTrades == 0 {
		return m
	}

	var totalProfit, totalLoss float64
	for _, r := range records {
		switch {
		case r.ProfitLoss > 0:
			m.WinningTrades++
			totalProfit += r.ProfitLoss
		case r.ProfitLoss < 0:
			m.LosingTrades++
			totalLoss += -r.ProfitLoss
		default:
			m.BreakEvenTrades++
		}
		m.NetPnL += r.ProfitLoss
	}

	m.WinRate = 100 * float64(m.WinningTrades) / float64(m.TotalTrades)
	if m.WinningTrades > 0 {
		m.AvgProfit = totalProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = totalLoss / float64(m.LosingTrades)
	}
	m.ProfitFactor = ProfitFactor(totalProfit, totalLoss)

	m.StartingBalance, m.CurrentBalance = balanceBounds(records)
	return m
}

// ProfitFactor resolves gross profit over gross loss to a defined limiting
// value in every degenerate case: +Inf when profit exists with zero loss,
// 0 when neither side exists.
func ProfitFactor(totalProfit, totalLoss float64) float64 {
	if totalLoss > 0 {
		return totalProfit / totalLoss
	}
	if totalProfit > 0 {
		return math.Inf(1)
	}
	return 0
}

// Expectancy is the probability-weighted average outcome per trade.
// winRate is expressed in percent.
func Expectancy(winRate, avgProfit, avgLoss float64) float64 {
	p := winRate / 100
	return p*avgProfit - (1-p)*avgLoss
}

// EquityCurve reconstructs the running balance series in input order. When a
// record supplies a balance that value is taken as-is; otherwise the previous
// point is advanced by the record's P/L (starting from zero when no balance
// has been seen yet).
func EquityCurve(records []models.TradeRecord) []float64 {
	curve := make([]float64, len(records))
	running := 0.0
	for i, r := range records {
		if r.Balance != nil {
			running = *r.Balance
		} else {
			running += r.ProfitLoss
		}
		curve[i] = running
	}
	return curve
}

// balanceBounds finds the first and last balance of the series. Supplied
// balances win; a fully reconstructed series starts at zero and ends at the
// last running value.
func balanceBounds(records []models.TradeRecord) (start, current float64) {
	curve := EquityCurve(records)
	if len(curve) == 0 {
		return 0, 0
	}

	for _, r := range records {
		if r.Balance != nil {
			start = *r.Balance
			break
		}
	}
	return start, curve[len(curve)-1]
}
