package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// mirrorRange is the tab and columns the snapshot rows land in.
const mirrorRange = "CableStock!A:E"

// Mirror publishes ingested cable stock snapshots to a shared spreadsheet so
// readers without API access can browse them.
type Mirror interface {
	AppendSnapshot(ctx context.Context, snapshot models.CableStockSnapshot) error
}

// GoogleSheetMirror implements Mirror using the official Google Sheets API.
type GoogleSheetMirror struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetMirror builds a Google Sheets backed mirror instance.
func NewGoogleSheetMirror(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Mirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetMirror{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendSnapshot appends one row per stock item to the mirror sheet.
func (m *GoogleSheetMirror) AppendSnapshot(ctx context.Context, snapshot models.CableStockSnapshot) error {
	rows := make([][]interface{}, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		rows = append(rows, []interface{}{
			snapshot.Month,
			item.Type,
			item.LinNo,
			item.Quantity,
			snapshot.UploadDate.Format("2006-01-02 15:04"),
		})
	}

	payload := &sheetsapi.ValueRange{Values: rows}

	call := m.service.Spreadsheets.Values.Append(m.spreadsheetID, mirrorRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append snapshot %s into range %s: %w", snapshot.Month, mirrorRange, err)
	}

	m.logger.Debug("snapshot mirrored to sheet",
		zap.String("month", snapshot.Month),
		zap.Int("rows", len(rows)))
	return nil
}
