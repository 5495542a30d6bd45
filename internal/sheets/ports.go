package sheets

import (
	"context"

	"calendario/internal/core"
)

// Ports for outbound adapters.
type (
	// CalendarExporter publishes a year calendar to an external spreadsheet.
	CalendarExporter interface {
		ExportYear(ctx context.Context, year int, expenses []core.Expense) error
	}
)
