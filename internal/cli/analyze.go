package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tradelens/internal/analysis"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/logging"
	"tradelens/internal/models"
	"tradelens/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file.csv]",
		Short: "Analyze a trade log",
		Long: `Run the full analytics pass over a trade log: aggregate metrics,
behavioral-bias diagnostics, and per-asset and per-hour breakdowns with
rankings. Reads the given CSV, or the most recent import when no file is
given.`,
		Example: `  tradelens analyze trades.csv
  tradelens analyze --import imp-1718000000000000000
  tradelens analyze --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			records, _, err := app.loadRecords(ctx, cmd, args)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNoValidRows) {
					output.Error("No valid trade rows to analyze")
				}
				return err
			}

			start := time.Now()
			result := analysis.Analyze(records, app.analysisOptions())
			logging.LogAnalysis(app.Logger, result.Metrics.TotalTrades,
				len(result.Insights), len(result.Assets), len(result.Hours),
				time.Since(start))

			if output.IsJSON() {
				return output.JSON(result)
			}
			renderResult(output, result)
			return nil
		},
	}
	cmd.Flags().String("import", "", "Analyze a persisted import by id")
	return cmd
}

// loadRecords resolves the record set for a command: an explicit CSV path, a
// persisted import by id, or the most recent import.
func (a *App) loadRecords(ctx context.Context, cmd *cobra.Command, args []string) ([]models.TradeRecord, string, error) {
	if len(args) == 1 {
		records, imp, err := loadAndNormalize(args[0])
		if err != nil {
			return nil, "", err
		}
		return records, imp.ID, nil
	}

	if a.Store == nil {
		return nil, "", fmt.Errorf("no file given and store unavailable")
	}

	importID, _ := cmd.Flags().GetString("import")
	if importID == "" {
		latest, err := a.Store.LatestImport(ctx)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrDataNotFound) {
				return nil, "", fmt.Errorf("no imports found, run 'tradelens import' first")
			}
			return nil, "", err
		}
		importID = latest.ID
	}

	records, err := a.Store.GetTrades(ctx, importID)
	if err != nil {
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", apperrors.ErrNoValidRows
	}
	return records, importID, nil
}

func renderResult(output *Output, result analysis.Result) {
	m := result.Metrics
	output.Bold("Performance")
	output.Printf("  Trades        %d (%d W / %d L / %d BE)\n",
		m.TotalTrades, m.WinningTrades, m.LosingTrades, m.BreakEvenTrades)
	output.Printf("  Win rate      %.1f%%\n", m.WinRate)
	output.Printf("  Avg win/loss  %s / %s\n",
		utils.FormatCompact(m.AvgProfit, 10), utils.FormatCompact(m.AvgLoss, 10))
	output.Printf("  Profit factor %s\n", utils.FormatCompact(m.ProfitFactor, 10))
	output.Printf("  Net P/L       %s\n", utils.FormatPnL(m.NetPnL))
	output.Printf("  Balance       %s -> %s\n",
		utils.FormatCompact(m.StartingBalance, 10), utils.FormatCompact(m.CurrentBalance, 10))
	output.Println()

	output.Bold("Behavioral signals")
	if len(result.Insights) == 0 {
		output.Success("  Clean trading pattern, no signals fired")
	}
	for _, tile := range result.Insights {
		render := output.Info
		switch tile.Severity {
		case models.SeverityHigh:
			render = output.Error
		case models.SeverityMedium:
			render = output.Warning
		}
		render("  [%s] %s (%.0f)", strings.ToUpper(string(tile.Severity)),
			strings.ReplaceAll(tile.Type, "_", " "), tile.Metric)
		output.Printf("      %s\n", tile.Description)
	}
	output.Println()

	if len(result.Assets) > 0 {
		output.Bold("Assets")
		output.Printf("  %-12s %7s %8s %10s %10s %6s %6s %6s\n",
			"ASSET", "TRADES", "WIN%", "NET P/L", "EXPECT", "R:PNL", "R:PF", "R:EXP")
		for _, a := range result.Assets {
			output.Printf("  %-12s %7d %7.1f%% %10s %10s %6d %6d %6d\n",
				a.Asset, a.TotalTrades, a.WinRate,
				utils.FormatCompact(a.NetPnL, 9), utils.FormatCompact(a.Expectancy, 9),
				a.RankByNetPnL, a.RankByProfitFactor, a.RankByExpectancy)
		}
		output.Println()
	}

	if len(result.Hours) > 0 {
		output.Bold("Hours")
		output.Printf("  %-6s %7s %8s %10s %10s\n", "HOUR", "TRADES", "WIN%", "NET P/L", "EXPECT")
		for _, h := range result.Hours {
			output.Printf("  %02d:00  %7d %7.1f%% %10s %10s\n",
				h.Hour, h.TotalTrades, h.WinRate,
				utils.FormatCompact(h.NetPnL, 9), utils.FormatCompact(h.Expectancy, 9))
		}
		flags := result.HourFlags
		if len(flags.StrongestHours) > 0 {
			output.Success("  Strongest hours: %s", hourList(flags.StrongestHours))
		}
		if len(flags.NegativeExpectancyHours) > 0 {
			output.Warning("  Negative-expectancy hours: %s", hourList(flags.NegativeExpectancyHours))
		}
		if flags.EarlySessionVolatility {
			output.Warning("  Early session (09:00-10:59) shows elevated volatility")
		}
	}
}

func hourList(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
