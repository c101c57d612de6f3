package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"shareit/internal/database"
	"shareit/internal/models"
)

const (
	sheetName = "Bookings"
	fileName  = "bookings.xlsx"

	// Snapshot window around "now".
	rangePastMonths   = 1
	rangeFutureMonths = 2
)

var headers = []string{"ID", "Item", "Booker ID", "Start", "End", "Status", "Created"}

// ExcelReporter keeps an xlsx snapshot of recent and upcoming bookings
// on disk. Each applied task rebuilds the whole file from the database,
// which keeps the sink trivially idempotent.
type ExcelReporter struct {
	db     *database.DB
	dir    string
	logger zerolog.Logger
}

func NewExcelReporter(db *database.DB, dir string, logger zerolog.Logger) *ExcelReporter {
	return &ExcelReporter{db: db, dir: dir, logger: logger}
}

func (r *ExcelReporter) UpsertBooking(_ *models.Booking) error {
	return r.rebuild()
}

func (r *ExcelReporter) UpdateBookingStatus(_ int64, _ string) error {
	return r.rebuild()
}

// FilePath returns where the snapshot is written.
func (r *ExcelReporter) FilePath() string {
	return filepath.Join(r.dir, fileName)
}

func (r *ExcelReporter) rebuild() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	now := time.Now()
	start := now.AddDate(0, -rangePastMonths, 0)
	end := now.AddDate(0, rangeFutureMonths, 0)

	bookings, err := r.db.GetBookingsByDateRange(context.Background(), start, end)
	if err != nil {
		return fmt.Errorf("failed to load bookings for report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), b.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), b.ItemName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), b.BookerID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), b.Start.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), b.End.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), b.Status)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), b.CreatedAt.Format("02.01.2006 15:04"))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "C", 12)
	_ = f.SetColWidth(sheetName, "D", "E", 18)
	_ = f.SetColWidth(sheetName, "F", "F", 12)
	_ = f.SetColWidth(sheetName, "G", "G", 18)

	_ = f.DeleteSheet("Sheet1")

	path := r.FilePath()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	r.logger.Debug().Str("file_path", path).Int("bookings", len(bookings)).Msg("bookings report rebuilt")
	return nil
}
