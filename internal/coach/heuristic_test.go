package coach

import (
	"context"
	"strings"
	"testing"

	"tradelens/internal/models"
)

func tile(biasType string, severity models.Severity, metric float64) models.BiasInsight {
	return models.BiasInsight{
		Type:           biasType,
		Severity:       severity,
		Metric:         metric,
		Description:    "description for " + biasType,
		Recommendation: "recommendation for " + biasType,
	}
}

func TestHeuristicEmptyTrades(t *testing.T) {
	p := NewHeuristicProducer()
	report, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !report.Validate() {
		t.Fatalf("empty-trades report must be well-formed: %+v", report)
	}
	if !strings.Contains(report.Summary, "No trades") {
		t.Errorf("summary = %q, want empty-trades message", report.Summary)
	}
	if report.Sentiment.Label != "neutral" || report.Sentiment.Score != 0 {
		t.Errorf("sentiment = %+v, want neutral 0", report.Sentiment)
	}
	if report.RiskProfile.Tier != "low" || report.RiskProfile.Score != 0 {
		t.Errorf("risk = %+v, want low 0", report.RiskProfile)
	}
	if report.Source != models.SourceHeuristic {
		t.Errorf("source = %q, want heuristic", report.Source)
	}
	if len(report.CoachingPrompts) == 0 {
		t.Error("prompts must not be empty")
	}
}

func TestHeuristicDominantBiasSummary(t *testing.T) {
	p := NewHeuristicProducer()
	req := Request{
		Metrics: models.Metrics{TotalTrades: 40, WinRate: 45},
		Insights: []models.BiasInsight{
			tile(models.BiasOvertrading, models.SeverityLow, 12),
			tile(models.BiasLossAversion, models.SeverityHigh, 70),
		},
	}
	report, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(report.Summary, "loss aversion") {
		t.Errorf("summary should name the dominant bias: %q", report.Summary)
	}
	if !strings.Contains(report.Summary, "high") {
		t.Errorf("summary should carry the severity: %q", report.Summary)
	}
}

func TestHeuristicSuggestionsAndTriggersPerTile(t *testing.T) {
	p := NewHeuristicProducer()
	req := Request{
		Metrics: models.Metrics{TotalTrades: 10, WinRate: 50},
		Insights: []models.BiasInsight{
			tile(models.BiasOvertrading, models.SeverityMedium, 30),
			tile(models.BiasDrawdown, models.SeverityLow, 10),
		},
	}
	report, _ := p.Generate(context.Background(), req)

	if len(report.OptimizationSuggestions) != 2 {
		t.Errorf("suggestions = %d, want one per tile", len(report.OptimizationSuggestions))
	}
	if len(report.FutureBiasTriggers) != 2 {
		t.Errorf("triggers = %d, want one per tile", len(report.FutureBiasTriggers))
	}
	// Prompts come from the dominant tile (overtrading, medium beats low).
	if !strings.Contains(report.CoachingPrompts[0], "setup") {
		t.Errorf("prompts = %v, want overtrading prompts", report.CoachingPrompts)
	}
}

func TestHeuristicSentiment(t *testing.T) {
	p := NewHeuristicProducer()

	t.Run("positive notes outweigh losses", func(t *testing.T) {
		req := Request{
			Metrics: models.Metrics{TotalTrades: 5, NetPnL: -100},
			Notes:   "Stayed disciplined and patient, followed the plan all week.",
		}
		report, _ := p.Generate(context.Background(), req)
		if report.Sentiment.Label != "positive" {
			t.Errorf("label = %q, want positive (score %f)", report.Sentiment.Label, report.Sentiment.Score)
		}
		if !strings.Contains(report.Sentiment.Evidence, "disciplined") {
			t.Errorf("evidence should cite matched cues: %q", report.Sentiment.Evidence)
		}
	})

	t.Run("negative notes", func(t *testing.T) {
		req := Request{
			Metrics: models.Metrics{TotalTrades: 5, NetPnL: -100},
			Notes:   "frustrated, went on tilt and revenge traded",
		}
		report, _ := p.Generate(context.Background(), req)
		if report.Sentiment.Label != "negative" {
			t.Errorf("label = %q, want negative", report.Sentiment.Label)
		}
	})

	t.Run("no notes, results alone stay mild", func(t *testing.T) {
		req := Request{Metrics: models.Metrics{TotalTrades: 5, NetPnL: 500}}
		report, _ := p.Generate(context.Background(), req)
		if report.Sentiment.Score != 0.5 {
			t.Errorf("score = %f, want 0.5", report.Sentiment.Score)
		}
		if report.Sentiment.Label != "positive" {
			t.Errorf("label = %q, want positive", report.Sentiment.Label)
		}
		if report.Sentiment.Evidence == "" {
			t.Error("evidence must explain the no-notes default")
		}
	})
}

func TestHeuristicRiskTiers(t *testing.T) {
	p := NewHeuristicProducer()
	tests := []struct {
		name     string
		insights []models.BiasInsight
		wantTier string
	}{
		{
			name: "high across the board",
			insights: []models.BiasInsight{
				tile(models.BiasDrawdown, models.SeverityHigh, 80),
				tile(models.BiasLossAversion, models.SeverityHigh, 90),
				tile(models.BiasOvertrading, models.SeverityHigh, 75),
			},
			wantTier: "high",
		},
		{
			name: "moderate blend",
			insights: []models.BiasInsight{
				tile(models.BiasDrawdown, models.SeverityMedium, 60),
				tile(models.BiasOvertrading, models.SeverityMedium, 50),
			},
			wantTier: "moderate",
		},
		{
			name:     "no risk tiles",
			insights: []models.BiasInsight{tile(models.BiasStrategy, models.SeverityLow, 20)},
			wantTier: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Metrics: models.Metrics{TotalTrades: 10}, Insights: tt.insights}
			report, _ := p.Generate(context.Background(), req)
			if report.RiskProfile.Tier != tt.wantTier {
				t.Errorf("tier = %q (score %f), want %q",
					report.RiskProfile.Tier, report.RiskProfile.Score, tt.wantTier)
			}
		})
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	p := NewHeuristicProducer()
	req := Request{
		Metrics:  models.Metrics{TotalTrades: 20, WinRate: 55, NetPnL: 300},
		Insights: []models.BiasInsight{tile(models.BiasRecency, models.SeverityMedium, 33)},
		Notes:    "feeling confident but a bit anxious",
	}
	a, _ := p.Generate(context.Background(), req)
	b, _ := p.Generate(context.Background(), req)
	if a.Summary != b.Summary || a.Sentiment != b.Sentiment || a.RiskProfile != b.RiskProfile {
		t.Error("identical input must yield an identical report")
	}
}
