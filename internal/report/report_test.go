package report

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"attendance-reporter/internal/models"
)

var t0 = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

func TestLatestIdentity(t *testing.T) {
	events := []models.RawEvent{
		{EmployeeID: "E1", Timestamp: t0.Add(2 * time.Hour), LastName: "Петрова", FirstName: "Анна", DepartmentName: "IT"},
		{EmployeeID: "E1", Timestamp: t0.Add(time.Hour), LastName: "Иванова", FirstName: "Анна", MiddleName: "Сергеевна", DepartmentName: "IT"},
		{EmployeeID: "E2", Timestamp: t0, LastName: "Смирнов", DepartmentName: "Склад"},
	}

	got := LatestIdentity(events)

	want := models.Employee{ID: "E1", LastName: "Петрова", FirstName: "Анна", MiddleName: "Сергеевна", Department: "IT"}
	if got["E1"] != want {
		t.Errorf("LatestIdentity()[E1] = %+v, want %+v", got["E1"], want)
	}
	if got["E2"].Department != "Склад" {
		t.Errorf("LatestIdentity()[E2] = %+v", got["E2"])
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name string
		emp  models.Employee
		want string
	}{
		{name: "All parts", emp: models.Employee{LastName: "Иванов", FirstName: "Иван", MiddleName: "Иванович"}, want: "Иванов Иван Иванович"},
		{name: "No middle name", emp: models.Employee{LastName: "Smith", FirstName: "John"}, want: "Smith John"},
		{name: "Blank first name", emp: models.Employee{LastName: "Иванов", FirstName: " ", MiddleName: "Иванович"}, want: "Иванов Иванович"},
		{name: "Unknown employee", emp: models.Employee{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FullName(tt.emp); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildRows(t *testing.T) {
	intervals := []models.AttendanceInterval{
		{EmployeeID: "E1", Arrival: t0.Add(8 * time.Hour), Departure: t0.Add(17*time.Hour + 30*time.Second), Total: 9*time.Hour + 30*time.Second},
	}
	employees := map[string]models.Employee{
		"E1": {ID: "E1", LastName: "Иванов", FirstName: "Иван", Department: "IT"},
	}

	got := BuildRows(intervals, employees)

	want := []models.ReportRow{{
		FullName:     "Иванов Иван",
		EmployeeID:   "E1",
		Department:   "IT",
		Arrival:      intervals[0].Arrival,
		Departure:    intervals[0].Departure,
		TotalMinutes: 540,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildRows() = %+v, want %+v", got, want)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("Отдел кадров", "2026-02-01"); got != "Отчет_Отдел_кадров_отдел_2026-02-01.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
	if got := FileName("A/B", "2026-02"); got != "Отчет_A_B_отдел_2026-02.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestWriterWrite(t *testing.T) {
	dir := t.TempDir()
	rows := []models.ReportRow{{
		FullName:     "Иванов Иван",
		EmployeeID:   "E1",
		Department:   "IT",
		Arrival:      t0.Add(8 * time.Hour),
		Departure:    t0.Add(17 * time.Hour),
		TotalMinutes: 540,
	}}

	path, err := NewWriter(dir).Write(rows, "IT", "2026-02-02")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if path != filepath.Join(dir, "Отчет_IT_отдел_2026-02-02.xlsx") {
		t.Errorf("path = %q", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		Headers,
		{"Иванов Иван", "E1", "IT", "08:00:00", "17:00:00", "540"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sheet rows = %v, want %v", got, want)
	}
}

func TestRenderLayout(t *testing.T) {
	f, err := Render(nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	defer f.Close()

	for i, want := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		got, err := f.GetColWidth(sheetName, col)
		if err != nil {
			t.Fatalf("GetColWidth(%s) error = %v", col, err)
		}
		if got != want {
			t.Errorf("width of %s = %v, want %v", col, got, want)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	for _, cell := range []string{"A1", lastCol + "1"} {
		style, err := f.GetCellStyle(sheetName, cell)
		if err != nil {
			t.Fatalf("GetCellStyle(%s) error = %v", cell, err)
		}
		if style == 0 {
			t.Errorf("header cell %s has no style", cell)
		}
	}
}
