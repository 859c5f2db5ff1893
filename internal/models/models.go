// Package models defines the core data types shared across the application.
package models

import (
	"encoding/json"
	"math"
	"time"
)

// Side represents the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether the side is one of the known values.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// TradeRecord is one normalized row of a trade log.
//
// Timestamp may be zero when the raw value could not be parsed; such records
// still participate in everything except hour-of-day grouping. Balance is nil
// when the source row did not carry one.
type TradeRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	RawTimestamp string    `json:"raw_timestamp"`
	Asset        string    `json:"asset"`
	Side         Side      `json:"side"`
	Quantity     float64   `json:"quantity"`
	EntryPrice   float64   `json:"entry_price"`
	ExitPrice    float64   `json:"exit_price"`
	ProfitLoss   float64   `json:"profit_loss"`
	Balance      *float64  `json:"balance,omitempty"`
}

// HasTimestamp reports whether the record carries a parsed timestamp.
func (r *TradeRecord) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// MarshalJSON renders the NaN sentinel of the optional numeric columns as
// null, the same mapping the store uses for SQL NULL.
func (r TradeRecord) MarshalJSON() ([]byte, error) {
	type plain TradeRecord
	return json.Marshal(struct {
		plain
		Quantity   *float64 `json:"quantity"`
		EntryPrice *float64 `json:"entry_price"`
		ExitPrice  *float64 `json:"exit_price"`
	}{plain(r), finiteOrNil(r.Quantity), finiteOrNil(r.EntryPrice), finiteOrNil(r.ExitPrice)})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// Metrics holds aggregate performance statistics for a record set.
// A zero Metrics value is the defined result for an empty record set.
type Metrics struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakEvenTrades int     `json:"break_even_trades"`
	WinRate         float64 `json:"win_rate"`
	AvgProfit       float64 `json:"avg_profit"`
	AvgLoss         float64 `json:"avg_loss"`
	ProfitFactor    float64 `json:"profit_factor"`
	NetPnL          float64 `json:"net_pnl"`
	CurrentBalance  float64 `json:"current_balance"`
	StartingBalance float64 `json:"starting_balance"`
}

// HasUnboundedProfitFactor reports whether the profit factor resolved to the
// no-losses limiting value.
func (m *Metrics) HasUnboundedProfitFactor() bool {
	return math.IsInf(m.ProfitFactor, 1)
}

// limitFloat serializes the defined non-finite limiting values as string
// tokens, mirroring the display policy, since encoding/json rejects them as
// numbers.
type limitFloat float64

func (f limitFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return json.Marshal("Infinity")
	case math.IsInf(v, -1):
		return json.Marshal("-Infinity")
	case math.IsNaN(v):
		return json.Marshal("NaN")
	}
	return json.Marshal(v)
}

// MarshalJSON keeps an unbounded profit factor serializable.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	return json.Marshal(struct {
		plain
		ProfitFactor limitFloat `json:"profit_factor"`
	}{plain(m), limitFloat(m.ProfitFactor)})
}

// Severity classifies how strongly a behavioral signal fired.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank returns an ordering value for severity comparison, higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// BiasInsight is one behavioral diagnostic tile. Metric is a bounded
// [0,100] strength indicator whose meaning is rule-specific.
type BiasInsight struct {
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Metric         float64  `json:"metric"`
}

// Bias rule type identifiers.
const (
	BiasLossAversion  = "loss_aversion"
	BiasOvertrading   = "overtrading"
	BiasRecency       = "recency"
	BiasDrawdown      = "drawdown"
	BiasConcentration = "concentration"
	BiasStrategy      = "strategy_effectiveness"
)

// GroupMetrics is the per-group statistical rollup shared by asset and hour
// breakdowns.
type GroupMetrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`
	AvgProfit     float64 `json:"avg_profit"`
	AvgLoss       float64 `json:"avg_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
	NetPnL        float64 `json:"net_pnl"`
	Expectancy    float64 `json:"expectancy"`
}

// AssetMetrics is the per-asset rollup with ranking positions assigned by the
// dimensional aggregator. Ranks are 1-based.
type AssetMetrics struct {
	Asset string `json:"asset"`
	GroupMetrics
	RankByNetPnL       int `json:"rank_by_net_pnl"`
	RankByProfitFactor int `json:"rank_by_profit_factor"`
	RankByExpectancy   int `json:"rank_by_expectancy"`
}

// MarshalJSON shadows the embedded profit factor so a no-losses group
// serializes. Defined on the outer type, not GroupMetrics, because a
// promoted marshaler would swallow the asset and rank fields.
func (a AssetMetrics) MarshalJSON() ([]byte, error) {
	type plain AssetMetrics
	return json.Marshal(struct {
		plain
		ProfitFactor limitFloat `json:"profit_factor"`
	}{plain(a), limitFloat(a.ProfitFactor)})
}

// HourMetrics is the rollup for one hour of the day (0-23).
type HourMetrics struct {
	Hour int `json:"hour"`
	GroupMetrics
}

// MarshalJSON shadows the embedded profit factor, as for AssetMetrics.
func (h HourMetrics) MarshalJSON() ([]byte, error) {
	type plain HourMetrics
	return json.Marshal(struct {
		plain
		ProfitFactor limitFloat `json:"profit_factor"`
	}{plain(h), limitFloat(h.ProfitFactor)})
}

// HourFlags holds the cross-cutting signals derived from the hour breakdown.
type HourFlags struct {
	NegativeExpectancyHours []int `json:"negative_expectancy_hours"`
	StrongestHours          []int `json:"strongest_hours"`
	EarlySessionVolatility  bool  `json:"early_session_volatility"`
}

// Sentiment is the coach's read of the trader's notes and results.
type Sentiment struct {
	Label    string  `json:"label"` // positive, neutral, negative
	Score    float64 `json:"score"` // -1..1
	Evidence string  `json:"evidence"`
}

// RiskProfile scores overall behavioral risk on a 0-100 scale.
type RiskProfile struct {
	Score     float64 `json:"score"`
	Tier      string  `json:"tier"` // low, moderate, high
	Rationale string  `json:"rationale"`
}

// Coaching report sources.
const (
	SourceHeuristic = "heuristic"
	SourceModel     = "model"
)

// CoachingReport is the structured coaching output. Every field is always
// populated, including for an empty record set.
type CoachingReport struct {
	Summary                 string      `json:"summary"`
	Sentiment               Sentiment   `json:"sentiment"`
	RiskProfile             RiskProfile `json:"risk_profile"`
	OptimizationSuggestions []string    `json:"optimization_suggestions"`
	FutureBiasTriggers      []string    `json:"future_bias_triggers"`
	CoachingPrompts         []string    `json:"coaching_prompts"`
	Source                  string      `json:"source"`
}

// Validate checks that the report carries every required field.
func (r *CoachingReport) Validate() bool {
	if r.Summary == "" || r.Source == "" {
		return false
	}
	if r.Sentiment.Label == "" || r.RiskProfile.Tier == "" {
		return false
	}
	return r.OptimizationSuggestions != nil &&
		r.FutureBiasTriggers != nil &&
		r.CoachingPrompts != nil
}
