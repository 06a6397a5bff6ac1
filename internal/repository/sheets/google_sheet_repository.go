package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/kisanpay/milkledger/internal/config"
	"github.com/kisanpay/milkledger/internal/domain/models"
)

const (
	digestSheetRange = "CollectionDigest!A:H"
	dateLayout       = "2006-01-02"
)

// Exporter appends collection-digest rows to an external spreadsheet.
type Exporter interface {
	ExportDigest(ctx context.Context, digest models.CollectionDigest) error
}

// GoogleSheetExporter implements Exporter using the official Google Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ExportDigest appends one row per entry of both sessions of the digest, so
// the spreadsheet carries the same flattened rows the session report shows.
func (e *GoogleSheetExporter) ExportDigest(ctx context.Context, digest models.CollectionDigest) error {
	rows := make([][]interface{}, 0, len(digest.Morning.Entries)+len(digest.Evening.Entries))
	for _, session := range []models.SessionReport{digest.Morning, digest.Evening} {
		for _, entry := range session.Entries {
			rows = append(rows, []interface{}{
				session.Date.Format(dateLayout),
				string(session.Shift),
				entry.CustomerCode,
				entry.CustomerName,
				entry.Quantity,
				entry.Fat,
				entry.Rate,
				entry.Amount,
			})
		}
	}

	if len(rows) == 0 {
		e.logger.Debug("no digest rows to export", zap.Time("date", digest.Date))
		return nil
	}

	payload := &sheetsapi.ValueRange{Values: rows}
	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, digestSheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append digest rows: %w", err)
	}

	e.logger.Debug("digest exported to sheet", zap.Time("date", digest.Date), zap.Int("rows", len(rows)))
	return nil
}
