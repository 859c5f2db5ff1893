package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/ingest"
	"tradelens/internal/logging"
	"tradelens/internal/models"
	"tradelens/internal/store"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a trade log CSV",
		Long:  "Normalize a trade log CSV and persist it for later analysis. Rows missing a timestamp or a valid BUY/SELL side are dropped.",
		Example: `  tradelens import trades.csv
  tradelens import trades.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			path := args[0]
			records, imp, err := loadAndNormalize(path)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrNoValidRows) {
					output.Error("No valid trade rows found in %s", path)
				}
				return err
			}

			if app.Store == nil {
				output.Warning("Store unavailable, import not persisted")
			} else if err := app.Store.SaveImport(ctx, imp, records); err != nil {
				return err
			}

			logging.LogImport(app.Logger, path, imp.RowsTotal, imp.RowsValid, imp.RowsRejected)

			if output.IsJSON() {
				return output.JSON(imp)
			}
			output.Success("Imported %d of %d rows from %s (id %s)",
				imp.RowsValid, imp.RowsTotal, path, imp.ID)
			if imp.RowsRejected > 0 {
				output.Warning("%d rows were rejected during normalization", imp.RowsRejected)
			}
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if app.Store == nil {
				output.Warning("Store unavailable")
				return nil
			}
			limit, _ := cmd.Flags().GetInt("limit")
			imports, err := app.Store.ListImports(ctx, limit)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(imports)
			}
			if len(imports) == 0 {
				output.Info("No imports yet. Run 'tradelens import <file.csv>' first.")
				return nil
			}
			output.Bold("%-24s %-28s %8s %8s %10s", "ID", "SOURCE", "VALID", "TOTAL", "DATE")
			for _, imp := range imports {
				output.Printf("%-24s %-28s %8d %8d %10s\n",
					imp.ID, imp.Source, imp.RowsValid, imp.RowsTotal,
					imp.CreatedAt.Format("02-Jan-2006"))
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum imports to list")
	return cmd
}

// loadAndNormalize reads a CSV from disk and normalizes it into records plus
// import bookkeeping.
func loadAndNormalize(path string) ([]models.TradeRecord, *store.Import, error) {
	rows, err := ingest.ReadCSVFile(path)
	if err != nil {
		return nil, nil, err
	}
	records, rejects, err := ingest.Normalize(rows)
	if err != nil {
		return nil, nil, err
	}
	imp := &store.Import{
		ID:           fmt.Sprintf("imp-%d", time.Now().UnixNano()),
		Source:       path,
		RowsTotal:    len(rows),
		RowsValid:    len(records),
		RowsRejected: len(rejects),
		CreatedAt:    time.Now(),
	}
	return records, imp, nil
}
