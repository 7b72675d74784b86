package cablestock

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
	"github.com/hanbit-systems/netstock/internal/repository/sheets"
)

// filenamePattern is the only accepted upload name: CABLE STOCK(MM.DD.YYYY).xlsx.
var filenamePattern = regexp.MustCompile(`(?i)^CABLE STOCK\((\d{2})\.(\d{2})\.(\d{4})\)\.xlsx$`)

// headerScanRows is how deep into the sheet the header row may sit.
const headerScanRows = 6

// Service ingests cable stock workbooks into monthly snapshots and computes
// consumption diffs between them.
type Service struct {
	store  mongodb.SnapshotStore
	mirror sheets.Mirror
	cfg    config.CableStockConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a cable stock service. The mirror may be nil when no
// shared spreadsheet is configured.
func NewService(store mongodb.SnapshotStore, mirror sheets.Mirror, cfg config.CableStockConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		mirror: mirror,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// MonthFromFilename validates the upload name and extracts the MM/YYYY
// snapshot key. The day is validated but otherwise unused.
func MonthFromFilename(name string) (string, error) {
	match := filenamePattern.FindStringSubmatch(name)
	if match == nil {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidFilename, name)
	}

	month, _ := strconv.Atoi(match[1])
	day, _ := strconv.Atoi(match[2])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidFilename, name)
	}

	return fmt.Sprintf("%s/%s", match[1], match[3]), nil
}

// Ingest parses the uploaded workbook and stores its snapshot, replacing any
// prior upload for the same month. On success the snapshot is also appended
// to the mirror sheet when one is configured; mirror failures are logged and
// never fail the upload.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*models.CableStockSnapshot, error) {
	snapshot, err := s.Parse(filename, r)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, *snapshot); err != nil {
		return nil, err
	}
	s.logger.Info("cable stock snapshot stored",
		zap.String("month", snapshot.Month),
		zap.Int("items", len(snapshot.Items)))

	if s.mirror != nil {
		if err := s.mirror.AppendSnapshot(ctx, *snapshot); err != nil {
			s.logger.Warn("sheet mirror failed", zap.String("month", snapshot.Month), zap.Error(err))
		}
	}

	return snapshot, nil
}

// Parse turns one workbook into a normalized snapshot without touching
// storage. The filename is checked before any bytes are read.
func (s *Service) Parse(filename string, r io.Reader) (*models.CableStockSnapshot, error) {
	month, err := MonthFromFilename(filename)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Debug("workbook close failed", zap.Error(err))
		}
	}()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", models.ErrHeaderNotFound)
	}

	rows, err := f.GetRows(sheetList[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetList[0], err)
	}

	items, err := s.parseRows(rows)
	if err != nil {
		return nil, err
	}

	return &models.CableStockSnapshot{
		Month:      month,
		Items:      items,
		UploadDate: s.now().UTC(),
	}, nil
}

// parseRows locates the header row within the first rows of the sheet and
// walks the data rows below it.
func (s *Service) parseRows(rows [][]string) ([]models.StockItem, error) {
	headerIdx := -1
	seen := make([]string, 0, headerScanRows)
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		first := cellAt(rows[i], 0)
		second := cellAt(rows[i], 1)
		if first == s.cfg.CategoryHeader && second == s.cfg.TypeHeader {
			headerIdx = i
			break
		}
		seen = append(seen, first)
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: first column values were %q", models.ErrHeaderNotFound, seen)
	}

	if err := s.validateHeader(rows[headerIdx]); err != nil {
		return nil, err
	}

	var items []models.StockItem
	category := ""
	for _, row := range rows[headerIdx+1:] {
		// Merged category cells surface a value only in their first row;
		// continuation rows inherit the last seen category.
		if c := cellAt(row, 0); c != "" {
			category = c
		}

		subtype := cellAt(row, 1)
		if category == "" || subtype == "" {
			continue
		}

		items = append(items, models.StockItem{
			Type:     strings.TrimSpace(category + "-" + subtype),
			LinNo:    cellAt(row, 2),
			Quantity: parseQuantity(cellAt(row, 3)),
		})
	}

	if len(items) == 0 {
		return nil, models.ErrNoValidItems
	}
	return items, nil
}

// validateHeader checks the four expected column headers by substring match
// and reports the cells that were found on mismatch.
func (s *Service) validateHeader(row []string) error {
	expected := []string{s.cfg.CategoryHeader, s.cfg.TypeHeader, s.cfg.LinNoHeader, s.cfg.QuantityHeader}
	found := make([]string, len(expected))
	for i := range expected {
		found[i] = cellAt(row, i)
	}

	for i, token := range expected {
		if !strings.Contains(strings.ToUpper(found[i]), strings.ToUpper(token)) {
			return fmt.Errorf("%w: expected %q in column %d, header row was %q", models.ErrHeaderValidation, token, i+1, found)
		}
	}
	return nil
}

// Snapshot fetches one stored snapshot by MM/YYYY key.
func (s *Service) Snapshot(ctx context.Context, month string) (*models.CableStockSnapshot, error) {
	return s.store.GetByMonth(ctx, month)
}

// Recent returns the stored snapshots from the last 12 months.
func (s *Service) Recent(ctx context.Context) ([]models.CableStockSnapshot, error) {
	return s.store.ListByMonths(ctx, models.RecentMonths(s.now(), 12))
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseQuantity coerces a cell to an integer; unparseable or missing values
// default to 0.
func parseQuantity(value string) int {
	if value == "" {
		return 0
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}
