package coach

import (
	"context"
	"fmt"
	"math"
	"strings"

	"tradelens/internal/analysis/bias"
	"tradelens/internal/models"
)

// HeuristicProducer derives a coaching report purely from the metrics and
// insight tiles. It is deterministic, needs no network, and is the guaranteed
// fallback when no external model is configured.
type HeuristicProducer struct{}

// NewHeuristicProducer creates the deterministic producer.
func NewHeuristicProducer() *HeuristicProducer {
	return &HeuristicProducer{}
}

// Name identifies the producer.
func (p *HeuristicProducer) Name() string {
	return models.SourceHeuristic
}

// sentiment keyword lexicon for the trader's free-text notes.
var (
	positiveWords = []string{
		"confident", "disciplined", "patient", "calm", "profit", "improving",
		"learning", "consistent", "focused", "good", "great", "plan",
	}
	negativeWords = []string{
		"frustrated", "angry", "revenge", "fomo", "panic", "scared", "loss",
		"tilt", "anxious", "stress", "bad", "impulsive", "chasing",
	}
)

// Generate builds the report. The output is always well-formed, including
// for the empty-trades case, which yields conservative neutral defaults.
func (p *HeuristicProducer) Generate(_ context.Context, req Request) (*models.CoachingReport, error) {
	report := &models.CoachingReport{
		Summary:                 p.summary(req),
		Sentiment:               p.sentiment(req),
		RiskProfile:             p.riskProfile(req),
		OptimizationSuggestions: p.suggestions(req.Insights),
		FutureBiasTriggers:      p.futureTriggers(req.Insights),
		CoachingPrompts:         p.prompts(req.Insights),
		Source:                  models.SourceHeuristic,
	}
	return report, nil
}

func (p *HeuristicProducer) summary(req Request) string {
	if req.Metrics.TotalTrades == 0 {
		return "No trades to analyze yet. Import a trade log to receive coaching."
	}
	dominant, ok := bias.Dominant(req.Insights)
	if !ok {
		return fmt.Sprintf(
			"Across %d trades no significant biases were detected. Win rate sits at %.1f%%.",
			req.Metrics.TotalTrades, req.Metrics.WinRate)
	}
	return fmt.Sprintf(
		"Across %d trades the dominant pattern is %s (%s severity). %s",
		req.Metrics.TotalTrades, readableType(dominant.Type), dominant.Severity, dominant.Description)
}

// sentiment blends note keyword polarity with the sign of net P/L. The note
// signal dominates when notes exist; results alone never push the label past
// mildly positive or negative.
func (p *HeuristicProducer) sentiment(req Request) models.Sentiment {
	noteScore, evidence := scoreNotes(req.Notes)

	pnlScore := 0.0
	switch {
	case req.Metrics.NetPnL > 0:
		pnlScore = 0.5
	case req.Metrics.NetPnL < 0:
		pnlScore = -0.5
	}

	score := pnlScore
	if req.Notes != "" {
		score = 0.6*noteScore + 0.4*pnlScore
	}
	score = math.Max(-1, math.Min(1, score))

	label := "neutral"
	if score > 0.2 {
		label = "positive"
	} else if score < -0.2 {
		label = "negative"
	}

	if evidence == "" {
		switch {
		case req.Metrics.TotalTrades == 0:
			evidence = "no trades and no notes to read sentiment from"
		case req.Metrics.NetPnL >= 0:
			evidence = "non-negative net P/L with no notes provided"
		default:
			evidence = "negative net P/L with no notes provided"
		}
	}

	return models.Sentiment{Label: label, Score: round2(score), Evidence: evidence}
}

func scoreNotes(notes string) (float64, string) {
	if strings.TrimSpace(notes) == "" {
		return 0, ""
	}
	lowered := strings.ToLower(notes)

	var hits []string
	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(lowered, w) {
			score++
			hits = append(hits, "+"+w)
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lowered, w) {
			score--
			hits = append(hits, "-"+w)
		}
	}
	if len(hits) == 0 {
		return 0, "notes contained no recognizable sentiment cues"
	}
	// Normalize by matched terms so long notes do not saturate.
	norm := score / float64(len(hits))
	return norm, "note cues: " + strings.Join(hits, ", ")
}

// Risk score weights: drawdown exposure, loss-to-win imbalance, trading pace.
const (
	riskWeightDrawdown = 0.40
	riskWeightLossWin  = 0.35
	riskWeightPace     = 0.25
)

func (p *HeuristicProducer) riskProfile(req Request) models.RiskProfile {
	if req.Metrics.TotalTrades == 0 {
		return models.RiskProfile{
			Score:     0,
			Tier:      "low",
			Rationale: "No trading activity to assess.",
		}
	}

	dd := insightMetric(req.Insights, models.BiasDrawdown)
	lossWin := insightMetric(req.Insights, models.BiasLossAversion)
	pace := insightMetric(req.Insights, models.BiasOvertrading)

	score := riskWeightDrawdown*dd + riskWeightLossWin*lossWin + riskWeightPace*pace
	tier := "low"
	if score >= 65 {
		tier = "high"
	} else if score >= 35 {
		tier = "moderate"
	}

	return models.RiskProfile{
		Score: round2(score),
		Tier:  tier,
		Rationale: fmt.Sprintf(
			"Weighted blend of drawdown exposure (%.0f), loss-to-win imbalance (%.0f) and trading pace (%.0f).",
			dd, lossWin, pace),
	}
}

func (p *HeuristicProducer) suggestions(insights []models.BiasInsight) []string {
	suggestions := make([]string, 0, len(insights))
	for _, tile := range insights {
		suggestions = append(suggestions, tile.Recommendation)
	}
	return suggestions
}

var futureTriggerByType = map[string]string{
	models.BiasLossAversion:  "Watch for hesitation to close a red position at its planned stop.",
	models.BiasOvertrading:   "Watch for entering a new trade within minutes of closing the last one.",
	models.BiasRecency:       "Watch for sizing up after a streak, in either direction.",
	models.BiasDrawdown:      "Watch for doubling position size to win back a drawdown quickly.",
	models.BiasConcentration: "Watch for defaulting to the familiar ticker when no setup exists elsewhere.",
	models.BiasStrategy:      "Watch for repeating the same entry pattern despite a losing record.",
}

func (p *HeuristicProducer) futureTriggers(insights []models.BiasInsight) []string {
	triggers := make([]string, 0, len(insights))
	for _, tile := range insights {
		if t, ok := futureTriggerByType[tile.Type]; ok {
			triggers = append(triggers, t)
		}
	}
	return triggers
}

var promptsByType = map[string][]string{
	models.BiasLossAversion: {
		"What would make it easier to close a losing trade at the planned stop?",
		"How do you decide, before entry, where a trade is wrong?",
	},
	models.BiasOvertrading: {
		"What does a valid setup look like, written down in one sentence?",
		"Which of this week's trades would you skip if you could replay it?",
	},
	models.BiasRecency: {
		"How much weight do your last three trades carry in your next decision?",
		"What changed between your stronger earlier stretch and recent sessions?",
	},
	models.BiasDrawdown: {
		"At what drawdown level will you reduce size, decided in advance?",
		"What is your written plan for trading out of a losing streak?",
	},
	models.BiasConcentration: {
		"What draws you back to your most-traded asset besides familiarity?",
		"Which other instruments fit your edge but rarely get traded?",
	},
	models.BiasStrategy: {
		"If this strategy belonged to someone else, what would you tell them?",
		"What evidence would convince you the setup has an edge?",
	},
}

func (p *HeuristicProducer) prompts(insights []models.BiasInsight) []string {
	dominant, ok := bias.Dominant(insights)
	if !ok {
		return []string{
			"What went well in your recent trading that you want to repeat?",
			"Which single habit, if improved, would most affect your results?",
		}
	}
	if prompts, found := promptsByType[dominant.Type]; found {
		return prompts
	}
	return []string{"What pattern in your trading deserves the most attention right now?"}
}

func insightMetric(insights []models.BiasInsight, biasType string) float64 {
	for _, tile := range insights {
		if tile.Type == biasType {
			return tile.Metric
		}
	}
	return 0
}

func readableType(biasType string) string {
	return strings.ReplaceAll(biasType, "_", " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
