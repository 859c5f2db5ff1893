// Package cli provides the command-line interface for the application.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradelens/internal/analysis"
	"tradelens/internal/analysis/bias"
	"tradelens/internal/analysis/grouping"
	"tradelens/internal/coach"
	"tradelens/internal/config"
	"tradelens/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.DataStore
	Coach  coach.Producer
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
		Coach:  coach.NewProducer(cfg, logger),
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "tradelens.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, imports will not be persisted")
	} else {
		app.Store = dataStore
	}

	rootCmd := &cobra.Command{
		Use:     "tradelens",
		Short:   "Trade log analytics and behavioral coaching",
		Long:    "TradeLens ingests a trade log and reports performance metrics, behavioral-bias diagnostics, per-asset and per-hour breakdowns, and a coaching summary.",
		Version: Version,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				app.Store.Close()
			}
		},
	}
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(newImportCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newCoachCmd(app))
	rootCmd.AddCommand(newExportCmd(app))

	return rootCmd
}

// analysisOptions maps the loaded configuration onto engine tuning.
func (a *App) analysisOptions() analysis.Options {
	c := a.Config.Analysis
	return analysis.Options{
		Thresholds: bias.Thresholds{
			LossAversionTrigger: c.LossAversionTrigger,
			LossAversionHigh:    c.LossAversionHigh,
			LossAversionMedium:  c.LossAversionMedium,
			OvertradingHigh:     c.OvertradingHigh,
			OvertradingMedium:   c.OvertradingMedium,
			RecencySplit:        c.RecencySplit,
			RecencyHighDrop:     c.RecencyHighDrop,
			DrawdownHigh:        c.DrawdownHigh,
			DrawdownMedium:      c.DrawdownMedium,
			ConcentrationMin:    c.ConcentrationMin,
			StrategyMinWinRate:  c.StrategyMinWinRate,
			ProfitFloor:         bias.DefaultThresholds().ProfitFloor,
		},
		HourPolicy: grouping.HourPolicy{
			StrongestTopN:  c.StrongestHoursTopN,
			EarlyBandStart: c.EarlyBandStart,
			EarlyBandEnd:   c.EarlyBandEnd,
			DispersionMin:  grouping.DefaultHourPolicy().DispersionMin,
		},
	}
}
