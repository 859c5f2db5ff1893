package cli

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"tradelens/internal/analysis"
	apperrors "tradelens/internal/errors"
)

// assetExportRow is the CSV shape for one asset group.
type assetExportRow struct {
	Asset              string  `csv:"asset"`
	Trades             int     `csv:"trades"`
	WinRate            float64 `csv:"win_rate"`
	AvgProfit          float64 `csv:"avg_profit"`
	AvgLoss            float64 `csv:"avg_loss"`
	ProfitFactor       float64 `csv:"profit_factor"`
	NetPnL             float64 `csv:"net_pnl"`
	Expectancy         float64 `csv:"expectancy"`
	RankByNetPnL       int     `csv:"rank_by_net_pnl"`
	RankByProfitFactor int     `csv:"rank_by_profit_factor"`
	RankByExpectancy   int     `csv:"rank_by_expectancy"`
}

// hourExportRow is the CSV shape for one hour group.
type hourExportRow struct {
	Hour         int     `csv:"hour"`
	Trades       int     `csv:"trades"`
	WinRate      float64 `csv:"win_rate"`
	AvgProfit    float64 `csv:"avg_profit"`
	AvgLoss      float64 `csv:"avg_loss"`
	ProfitFactor float64 `csv:"profit_factor"`
	NetPnL       float64 `csv:"net_pnl"`
	Expectancy   float64 `csv:"expectancy"`
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <out.csv> [file.csv]",
		Short: "Export the asset or hour breakdown as CSV",
		Example: `  tradelens export assets.csv trades.csv
  tradelens export hours.csv --hours`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			records, _, err := app.loadRecords(ctx, cmd, args[1:])
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNoValidRows) {
					output.Error("No valid trade rows to export")
				}
				return err
			}
			result := analysis.Analyze(records, app.analysisOptions())

			outPath := args[0]
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			byHour, _ := cmd.Flags().GetBool("hours")
			if byHour {
				rows := make([]hourExportRow, 0, len(result.Hours))
				for _, h := range result.Hours {
					rows = append(rows, hourExportRow{
						Hour:         h.Hour,
						Trades:       h.TotalTrades,
						WinRate:      h.WinRate,
						AvgProfit:    h.AvgProfit,
						AvgLoss:      h.AvgLoss,
						ProfitFactor: h.ProfitFactor,
						NetPnL:       h.NetPnL,
						Expectancy:   h.Expectancy,
					})
				}
				if err := gocsv.MarshalFile(&rows, f); err != nil {
					return err
				}
				output.Success("Exported %d hour groups to %s", len(rows), outPath)
				return nil
			}

			rows := make([]assetExportRow, 0, len(result.Assets))
			for _, a := range result.Assets {
				rows = append(rows, assetExportRow{
					Asset:              a.Asset,
					Trades:             a.TotalTrades,
					WinRate:            a.WinRate,
					AvgProfit:          a.AvgProfit,
					AvgLoss:            a.AvgLoss,
					ProfitFactor:       a.ProfitFactor,
					NetPnL:             a.NetPnL,
					Expectancy:         a.Expectancy,
					RankByNetPnL:       a.RankByNetPnL,
					RankByProfitFactor: a.RankByProfitFactor,
					RankByExpectancy:   a.RankByExpectancy,
				})
			}
			if err := gocsv.MarshalFile(&rows, f); err != nil {
				return err
			}
			output.Success("Exported %d asset groups to %s", len(rows), outPath)
			return nil
		},
	}
	cmd.Flags().Bool("hours", false, "Export the hour breakdown instead of assets")
	cmd.Flags().String("import", "", "Export from a persisted import by id")
	return cmd
}
