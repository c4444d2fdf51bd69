package report

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"attendance-reporter/internal/models"
)

const sheetName = "Посещаемость"

// Headers of the attendance sheet, in column order
var Headers = []string{"ФИО", "Табельный номер", "Отдел", "Время прибытия", "Время убытия", "Минут всего"}

var columnWidths = []float64{36, 18, 28, 16, 16, 14}

// Writer saves attendance spreadsheets into a directory
type Writer struct {
	dir string
}

// NewWriter creates a writer that stores files under dir
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// FileName builds the report file name for a department and period label
func FileName(department, label string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_", ":", "_", " ", "_").Replace(strings.TrimSpace(department))
	return fmt.Sprintf("Отчет_%s_отдел_%s.xlsx", safe, label)
}

// Write renders rows and saves them. It returns the path of the saved file.
func (w *Writer) Write(rows []models.ReportRow, department, label string) (string, error) {
	f, err := Render(rows)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(w.dir, FileName(department, label))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}

	log.Printf("📄 Created report file: %s (%d rows)", path, len(rows))
	return path, nil
}

// Render builds the workbook in memory
func Render(rows []models.ReportRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.FullName,
			r.EmployeeID,
			r.Department,
			r.Arrival.Format("15:04:05"),
			r.Departure.Format("15:04:05"),
			r.TotalMinutes,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f, nil
}
