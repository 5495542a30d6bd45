package main

import (
	"fmt"
	"os"
	"time"

	"calendario/internal/calendar"
	"calendario/internal/cli"
	"calendario/internal/core"
	applog "calendario/internal/log"
	"calendario/internal/sheets/google"

	"github.com/spf13/cobra"
)

var exportFlags struct {
	year   int
	sheet  string
	dryRun bool
}

var rootCmd = &cobra.Command{
	Use:   "calendar-export",
	Short: "Export the yearly expense calendar to Google Sheets",
	Long: `Write one row per active expense and one column per month to the
"<year> <sheet>" tab of GOOGLE_SPREADSHEET_ID, followed by a totals row.

Examples:
  # Export the current year
  calendar-export

  # Export 2025 to the "2025 Budget" tab
  calendar-export --year 2025 --sheet Budget

  # Print monthly totals without touching the spreadsheet
  calendar-export --year 2025 --dry-run`,
	SilenceUsage: true,
	RunE:         runExport,
}

func init() {
	rootCmd.Flags().IntVar(&exportFlags.year, "year", time.Now().Year(), "calendar year to export")
	rootCmd.Flags().StringVar(&exportFlags.sheet, "sheet", "", "sheet name (defaults to GOOGLE_SHEET_NAME)")
	rootCmd.Flags().BoolVar(&exportFlags.dryRun, "dry-run", false, "print monthly totals instead of exporting")
}

func main() {
	cli.LoadEnvFile()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlags.year < 1 || exportFlags.year > 9999 {
		return fmt.Errorf("invalid year %d", exportFlags.year)
	}

	logger := cli.SetupLogger(applog.ComponentSheets)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	result := cli.InitBackend(ctx, logger, cfg)
	defer cli.Cleanup(logger, result)

	expenses, err := result.Backend.ListActiveExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	if exportFlags.dryRun {
		out := cmd.OutOrStdout()
		for _, m := range calendar.YearOverview(expenses, exportFlags.year) {
			fmt.Fprintf(out, "%04d-%02d  %12s  %d payments\n", m.Year, m.Month, core.FormatAmount(m.Total), len(m.Items))
		}
		return nil
	}

	if err := cfg.ValidateExport(); err != nil {
		return err
	}
	sheet := exportFlags.sheet
	if sheet == "" {
		sheet = cfg.GoogleSheetName
	}

	exporter, err := google.NewExporter(ctx, cfg.GoogleSpreadsheetID, sheet)
	if err != nil {
		return err
	}
	if err := exporter.ExportYear(ctx, exportFlags.year, expenses); err != nil {
		logger.Error("Export failed", "error", err, applog.FieldOperation, applog.OpExport, applog.FieldYear, exportFlags.year)
		return err
	}

	logger.Info("Export complete",
		applog.FieldOperation, applog.OpExport,
		applog.FieldYear, exportFlags.year,
		"expenses", len(expenses))
	return nil
}
