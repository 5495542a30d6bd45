// Package google writes calendar grids to Google Sheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"calendario/internal/calendar"
	"calendario/internal/core"
	ports "calendario/internal/sheets"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultSheetName = "Calendario"

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
}

// Ensure interface conformance
var _ ports.CalendarExporter = (*Exporter)(nil)

// NewExporter creates an exporter authenticated with service account
// credentials. An empty sheetName defaults to "Calendario"; the year is
// prefixed at export time.
func NewExporter(ctx context.Context, spreadsheetID, sheetName string) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName = strings.TrimSpace(sheetName)
	if sheetName == "" {
		sheetName = defaultSheetName
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"inline", serviceAccountJSON != "",
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportYear replaces the contents of the "<year> <sheet>" tab with the
// year grid, creating the tab when missing.
func (x *Exporter) ExportYear(ctx context.Context, year int, expenses []core.Expense) error {
	if x.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(x.sheetBase, year)
	if err := x.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	grid := buildYearGrid(year, expenses)

	if _, err := x.svc.Spreadsheets.Values.Clear(x.spreadsheetID, sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", sheet, err)
	}

	vr := &gsheet.ValueRange{Values: grid}
	if _, err := x.svc.Spreadsheets.Values.Update(x.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
	}

	slog.InfoContext(ctx, "Exported calendar to Google Sheets",
		"sheet", sheet,
		"year", year,
		"rows", len(grid))
	return nil
}

func (x *Exporter) ensureSheet(ctx context.Context, name string) error {
	ss, err := x.svc.Spreadsheets.Get(x.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == name {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := x.svc.Spreadsheets.BatchUpdate(x.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return nil
}

// buildYearGrid lays out one row per expense that occurs in year, with the
// amount due in each month column, followed by a totals row.
func buildYearGrid(year int, expenses []core.Expense) [][]any {
	header := []any{"Name", "Category", "Type", "Frequency"}
	for m := time.January; m <= time.December; m++ {
		header = append(header, m.String()[:3])
	}
	grid := [][]any{header}

	totals := make([]decimal.Decimal, 12)
	for _, e := range expenses {
		row := []any{e.Name, e.Category, string(e.Type), string(e.PaymentFrequency)}
		occurs := false
		for m := 0; m < 12; m++ {
			occ, ok := calendar.OccurrenceAt(e, calendar.Period{Year: year, MonthIndex: m})
			if !ok {
				row = append(row, "")
				continue
			}
			occurs = true
			totals[m] = totals[m].Add(occ.Amount)
			row = append(row, core.FormatAmount(occ.Amount))
		}
		if occurs {
			grid = append(grid, row)
		}
	}

	total := []any{"Total", "", "", ""}
	for _, t := range totals {
		total = append(total, core.FormatAmount(t))
	}
	return append(grid, total)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
