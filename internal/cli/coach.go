package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tradelens/internal/analysis"
	"tradelens/internal/coach"
	apperrors "tradelens/internal/errors"
	"tradelens/internal/logging"
)

// recentTradeWindow caps how many trailing records are shared with the
// model-backed producer.
const recentTradeWindow = 20

func newCoachCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach [file.csv]",
		Short: "Generate a coaching report",
		Long: `Analyze a trade log and produce a structured coaching report. Uses the
configured model when an OpenAI key is present, otherwise the deterministic
heuristic producer; the output shape is identical either way.`,
		Example: `  tradelens coach trades.csv --notes "felt rushed all week"
  tradelens coach --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			records, importID, err := app.loadRecords(ctx, cmd, args)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNoValidRows) {
					output.Error("No valid trade rows to coach on")
				}
				return err
			}

			notes, _ := cmd.Flags().GetString("notes")
			result := analysis.Analyze(records, app.analysisOptions())

			recent := records
			if len(recent) > recentTradeWindow {
				recent = recent[len(recent)-recentTradeWindow:]
			}

			report, err := app.Coach.Generate(ctx, coach.Request{
				Metrics:      result.Metrics,
				Insights:     result.Insights,
				Notes:        notes,
				RecentTrades: recent,
			})
			if err != nil {
				return err
			}
			logging.LogCoaching(app.Logger, report.Source, report.RiskProfile.Tier,
				len(report.OptimizationSuggestions))

			if app.Store != nil && len(args) == 0 {
				if err := app.Store.SaveReport(ctx, importID, report); err != nil {
					output.Warning("Report not persisted: %v", err)
				}
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			output.Bold("Coaching report (%s)", report.Source)
			output.Println()
			output.Printf("%s\n\n", report.Summary)
			output.Printf("Sentiment: %s (%.2f) - %s\n",
				report.Sentiment.Label, report.Sentiment.Score, report.Sentiment.Evidence)
			output.Printf("Risk:      %s (%.0f/100) - %s\n\n",
				report.RiskProfile.Tier, report.RiskProfile.Score, report.RiskProfile.Rationale)
			if len(report.OptimizationSuggestions) > 0 {
				output.Bold("Suggestions")
				for _, s := range report.OptimizationSuggestions {
					output.Printf("  - %s\n", s)
				}
				output.Println()
			}
			if len(report.FutureBiasTriggers) > 0 {
				output.Bold("Watch for")
				for _, t := range report.FutureBiasTriggers {
					output.Printf("  - %s\n", t)
				}
				output.Println()
			}
			if len(report.CoachingPrompts) > 0 {
				output.Bold("Reflection prompts")
				for _, p := range report.CoachingPrompts {
					output.Printf("  - %s\n", p)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("notes", "", "Free-text notes about your recent trading")
	cmd.Flags().String("import", "", "Coach on a persisted import by id")
	return cmd
}
