package analysis

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tradelens/internal/models"
)

func buildRecords() []models.TradeRecord {
	data := []struct {
		asset string
		hour  int
		pnl   float64
	}{
		{"AAPL", 9, 120},
		{"AAPL", 10, -40},
		{"MSFT", 10, 80},
		{"MSFT", 14, 60},
		{"TSLA", 14, -90},
		{"AAPL", 15, 35},
	}
	records := make([]models.TradeRecord, 0, len(data))
	for _, d := range data {
		records = append(records, models.TradeRecord{
			Timestamp:  time.Date(2024, 5, 6, d.hour, 0, 0, 0, time.UTC),
			Asset:      d.asset,
			Side:       models.SideBuy,
			ProfitLoss: d.pnl,
		})
	}
	return records
}

func TestAnalyze(t *testing.T) {
	result := Analyze(buildRecords(), DefaultOptions())

	if result.Metrics.TotalTrades != 6 {
		t.Errorf("total trades = %d, want 6", result.Metrics.TotalTrades)
	}
	if result.Metrics.NetPnL != 165 {
		t.Errorf("net P/L = %f, want 165", result.Metrics.NetPnL)
	}

	if len(result.Assets) != 3 {
		t.Fatalf("assets = %d, want 3", len(result.Assets))
	}
	// Discovery order in the slice; MSFT (140) beats AAPL (115) on net P/L.
	if result.Assets[0].Asset != "AAPL" {
		t.Errorf("first discovered asset = %q, want AAPL", result.Assets[0].Asset)
	}
	for _, a := range result.Assets {
		if a.Asset == "MSFT" && a.RankByNetPnL != 1 {
			t.Errorf("MSFT net P/L rank = %d, want 1", a.RankByNetPnL)
		}
		if a.Asset == "TSLA" && a.RankByNetPnL != 3 {
			t.Errorf("TSLA net P/L rank = %d, want 3", a.RankByNetPnL)
		}
	}

	if len(result.Hours) != 4 {
		t.Errorf("active hours = %d, want 4", len(result.Hours))
	}
	if len(result.Insights) == 0 {
		t.Error("insights should at least carry the trading-pace tile")
	}
	found := false
	for _, tile := range result.Insights {
		if tile.Type == models.BiasOvertrading {
			found = true
		}
	}
	if !found {
		t.Error("trading-pace tile missing")
	}
}

func TestAnalyzeAllProfitSerializes(t *testing.T) {
	// Wins with no losses resolve the profit factor to +Inf at every level
	// (aggregate, per asset, per hour); the JSON form must carry the token
	// instead of erroring.
	records := []models.TradeRecord{
		{Timestamp: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), Asset: "AAPL", Side: models.SideBuy, ProfitLoss: 10},
		{Timestamp: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC), Asset: "AAPL", Side: models.SideSell, ProfitLoss: 20},
	}
	result := Analyze(records, DefaultOptions())
	if !result.Metrics.HasUnboundedProfitFactor() {
		t.Fatalf("profit factor = %f, want +Inf", result.Metrics.ProfitFactor)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"profit_factor":"Infinity"`) {
		t.Errorf("JSON lacks the Infinity token: %s", data)
	}
	// The asset rollup keeps its identity fields alongside the shadowed one.
	if !strings.Contains(string(data), `"asset":"AAPL"`) || !strings.Contains(string(data), `"rank_by_net_pnl":1`) {
		t.Errorf("asset fields lost in JSON: %s", data)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := Analyze(nil, DefaultOptions())

	if result.Metrics.TotalTrades != 0 {
		t.Errorf("total trades = %d, want 0", result.Metrics.TotalTrades)
	}
	if len(result.Insights) != 0 {
		t.Errorf("insights = %v, want none for an empty set", result.Insights)
	}
	if len(result.Assets) != 0 || len(result.Hours) != 0 {
		t.Error("groupings must be empty for an empty set")
	}
	if result.HourFlags.NegativeExpectancyHours == nil || result.HourFlags.StrongestHours == nil {
		t.Error("hour flag slices must be non-nil")
	}
	if result.HourFlags.EarlySessionVolatility {
		t.Error("no records should not flag early-session volatility")
	}
}
