package bias

import (
	"testing"
	"time"

	"tradelens/internal/analysis/stats"
	"tradelens/internal/models"
)

func makeRecords(asset string, pnls ...float64) []models.TradeRecord {
	records := make([]models.TradeRecord, len(pnls))
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	for i, p := range pnls {
		records[i] = models.TradeRecord{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Asset:      asset,
			Side:       models.SideBuy,
			ProfitLoss: p,
		}
	}
	return records
}

func detect(records []models.TradeRecord) []models.BiasInsight {
	return Detect(records, stats.Compute(records), DefaultThresholds())
}

func findInsight(insights []models.BiasInsight, biasType string) (models.BiasInsight, bool) {
	for _, tile := range insights {
		if tile.Type == biasType {
			return tile, true
		}
	}
	return models.BiasInsight{}, false
}

func TestDetectEmptySet(t *testing.T) {
	insights := detect(nil)
	if len(insights) != 0 {
		t.Errorf("empty set produced %d insights, want 0", len(insights))
	}
}

func TestLossAversionSeverities(t *testing.T) {
	tests := []struct {
		name     string
		pnls     []float64
		fired    bool
		severity models.Severity
	}{
		{"healthy ratio stays silent", []float64{100, -100}, false, ""},
		{"ratio just above trigger", []float64{100, -160}, true, models.SeverityMedium},
		{"ratio above high band", []float64{100, -200}, true, models.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := makeRecords("AAPL", tt.pnls...)
			tile, ok := DetectLossAversion(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
			if ok != tt.fired {
				t.Fatalf("fired = %v, want %v", ok, tt.fired)
			}
			if ok && tile.Severity != tt.severity {
				t.Errorf("severity = %s, want %s", tile.Severity, tt.severity)
			}
		})
	}
}

func TestLossAversionHighBandIsExclusive(t *testing.T) {
	// Ratio of exactly 1.75 sits on the high-band boundary and stays medium.
	records := makeRecords("AAPL", 100, 100, -175, -175)
	tile, ok := DetectLossAversion(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
	if !ok {
		t.Fatal("rule did not fire")
	}
	if tile.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium", tile.Severity)
	}
}

func TestOvertradingAlwaysEmitsOnceTradesExist(t *testing.T) {
	records := makeRecords("AAPL", 10)
	insights := detect(records)
	tile, ok := findInsight(insights, models.BiasOvertrading)
	if !ok {
		t.Fatal("overtrading tile missing for a non-empty set")
	}
	if tile.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want low for a single trade", tile.Severity)
	}
}

func TestOvertradingSeverityBands(t *testing.T) {
	tests := []struct {
		name     string
		trades   int
		severity models.Severity
	}{
		{"calm pace", 10, models.SeverityLow},
		{"elevated pace", 20, models.SeverityMedium},
		{"churning", 40, models.SeverityHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pnls := make([]float64, tt.trades)
			for i := range pnls {
				pnls[i] = 10
			}
			records := makeRecords("AAPL", pnls...)
			tile, ok := DetectOvertrading(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
			if !ok {
				t.Fatal("rule did not fire")
			}
			if tile.Severity != tt.severity {
				t.Errorf("severity = %s, want %s", tile.Severity, tt.severity)
			}
		})
	}
}

func TestRecencyNegativeMomentum(t *testing.T) {
	// Head of 8 winners, tail of 2 big losers: sharp decay.
	records := makeRecords("AAPL", 50, 50, 50, 50, 50, 50, 50, 50, -100, -100)
	tile, ok := DetectRecency(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
	if !ok {
		t.Fatal("rule did not fire")
	}
	if tile.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high", tile.Severity)
	}
}

func TestRecencyHealthyMomentum(t *testing.T) {
	records := makeRecords("AAPL", 10, 10, 10, 10, 20)
	tile, ok := DetectRecency(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
	if !ok {
		t.Fatal("rule did not fire")
	}
	if tile.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want low for improving tail", tile.Severity)
	}
}

func TestRecencySingleRecordSilent(t *testing.T) {
	records := makeRecords("AAPL", 10)
	if _, ok := DetectRecency(NewSnapshot(records, stats.Compute(records)), DefaultThresholds()); ok {
		t.Error("rule fired on a single record")
	}
}

func TestDrawdownSeverity(t *testing.T) {
	bal := func(v float64) *float64 { return &v }
	records := []models.TradeRecord{
		{Asset: "AAPL", Side: models.SideBuy, ProfitLoss: 0, Balance: bal(1000)},
		{Asset: "AAPL", Side: models.SideBuy, ProfitLoss: 0, Balance: bal(700)},
		{Asset: "AAPL", Side: models.SideBuy, ProfitLoss: 0, Balance: bal(900)},
	}
	tile, ok := DetectDrawdown(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
	if !ok {
		t.Fatal("rule did not fire")
	}
	if tile.Severity != models.SeverityHigh {
		t.Errorf("severity = %s, want high for a 30%% drawdown", tile.Severity)
	}
	if tile.Metric < 29.9 || tile.Metric > 30.1 {
		t.Errorf("metric = %f, want ~30", tile.Metric)
	}
}

func TestConcentrationDominantAsset(t *testing.T) {
	// 50 trades in one asset among 2 assets total.
	records := makeRecords("BTCUSD", make([]float64, 50)...)
	for i := range records {
		records[i].ProfitLoss = 10
	}
	records = append(records, makeRecords("ETHUSD", 10, 10)...)

	tile, ok := DetectConcentration(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
	if !ok {
		t.Fatal("rule did not fire")
	}
	if tile.Severity != models.SeverityLow {
		t.Errorf("severity = %s, want fixed low", tile.Severity)
	}
	if tile.Metric < 95 || tile.Metric > 97 {
		t.Errorf("metric = %f, want ~96 (50 of 52 trades)", tile.Metric)
	}
}

func TestConcentrationBalancedSilent(t *testing.T) {
	var records []models.TradeRecord
	for _, asset := range []string{"A", "B", "C", "D", "E"} {
		records = append(records, makeRecords(asset, 10)...)
	}
	if _, ok := DetectConcentration(NewSnapshot(records, stats.Compute(records)), DefaultThresholds()); ok {
		t.Error("rule fired on an evenly spread book")
	}
}

func TestStrategyEffectiveness(t *testing.T) {
	t.Run("low win rate fires high", func(t *testing.T) {
		records := makeRecords("AAPL", -10, -10, -10, 10)
		tile, ok := DetectStrategyEffectiveness(NewSnapshot(records, stats.Compute(records)), DefaultThresholds())
		if !ok {
			t.Fatal("rule did not fire at 25% win rate")
		}
		if tile.Severity != models.SeverityHigh {
			t.Errorf("severity = %s, want high", tile.Severity)
		}
	})

	t.Run("perfect win rate stays silent", func(t *testing.T) {
		records := makeRecords("AAPL", 10, 20)
		if _, ok := DetectStrategyEffectiveness(NewSnapshot(records, stats.Compute(records)), DefaultThresholds()); ok {
			t.Error("rule fired at 100% win rate")
		}
	})
}

func TestDominant(t *testing.T) {
	insights := []models.BiasInsight{
		{Type: "a", Severity: models.SeverityLow, Metric: 90},
		{Type: "b", Severity: models.SeverityHigh, Metric: 40},
		{Type: "c", Severity: models.SeverityHigh, Metric: 60},
	}
	dominant, ok := Dominant(insights)
	if !ok {
		t.Fatal("no dominant tile found")
	}
	if dominant.Type != "c" {
		t.Errorf("dominant = %s, want c (high severity, larger metric)", dominant.Type)
	}

	if _, ok := Dominant(nil); ok {
		t.Error("Dominant(nil) reported a tile")
	}
}

func TestRulesDoNotMutateSnapshot(t *testing.T) {
	records := makeRecords("AAPL", 100, -200, 50, -80, 120)
	metrics := stats.Compute(records)
	snap := NewSnapshot(records, metrics)
	before := *snap

	for _, rule := range rules {
		rule(snap, DefaultThresholds())
	}

	if snap.Metrics != before.Metrics {
		t.Error("a rule mutated the shared metrics")
	}
	for i := range before.Records {
		if snap.Records[i] != before.Records[i] {
			t.Errorf("a rule mutated record %d", i)
		}
	}
}
