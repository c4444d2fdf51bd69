// Package report turns attendance intervals into spreadsheet files
package report

import (
	"sort"
	"strings"
	"time"

	"attendance-reporter/internal/models"
)

// LatestIdentity returns, per employee, the most recent non-empty identity
// fields seen in the raw batch. Status is ignored: a rejected swipe still
// carries a valid name.
func LatestIdentity(events []models.RawEvent) map[string]models.Employee {
	ordered := make([]models.RawEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	out := make(map[string]models.Employee)
	for _, e := range ordered {
		emp := out[e.EmployeeID]
		emp.ID = e.EmployeeID
		setIfPresent(&emp.LastName, e.LastName)
		setIfPresent(&emp.FirstName, e.FirstName)
		setIfPresent(&emp.MiddleName, e.MiddleName)
		setIfPresent(&emp.Department, e.DepartmentName)
		out[e.EmployeeID] = emp
	}
	return out
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// FullName joins last, first and middle names, skipping blanks
func FullName(e models.Employee) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.LastName, e.FirstName, e.MiddleName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// BuildRows joins intervals to employee identity. Row order follows the
// interval order.
func BuildRows(intervals []models.AttendanceInterval, employees map[string]models.Employee) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(intervals))
	for _, iv := range intervals {
		emp := employees[iv.EmployeeID]
		rows = append(rows, models.ReportRow{
			FullName:     FullName(emp),
			EmployeeID:   iv.EmployeeID,
			Department:   emp.Department,
			Arrival:      iv.Arrival,
			Departure:    iv.Departure,
			TotalMinutes: int(iv.Total / time.Minute),
		})
	}
	return rows
}
