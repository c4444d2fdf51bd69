package services

import (
	"fmt"
	"strings"
	"time"
)

// Period is the length of a report window
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod converts a user-supplied string into a Period
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q (want daily, weekly or monthly)", s)
	}
}

// ReportRange is an inclusive date range with its file/subject label
type ReportRange struct {
	Period Period
	Start  time.Time
	End    time.Time
	Label  string
}

// RangeFor computes the report window that a run at now covers:
// yesterday, the previous Monday..Sunday week, or the previous calendar month.
func RangeFor(p Period, now time.Time) (ReportRange, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch p {
	case PeriodDaily:
		day := today.AddDate(0, 0, -1)
		return ReportRange{Period: p, Start: day, End: day, Label: day.Format("2006-01-02")}, nil

	case PeriodWeekly:
		sinceMonday := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -(sinceMonday + 7))
		end := start.AddDate(0, 0, 6)
		label := fmt.Sprintf("%s_to_%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
		return ReportRange{Period: p, Start: start, End: end, Label: label}, nil

	case PeriodMonthly:
		end := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, 0, -1)
		start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
		return ReportRange{Period: p, Start: start, End: end, Label: start.Format("2006-01")}, nil

	default:
		return ReportRange{}, fmt.Errorf("unknown period %q", p)
	}
}

func subjectAndBody(r ReportRange, department string) (string, string) {
	switch r.Period {
	case PeriodWeekly:
		return fmt.Sprintf("Еженедельный отчет по посещаемости отдела %s за %s", department, r.Label),
			fmt.Sprintf("Еженедельный отчет по посещаемости сотрудников отдела %s за период %s", department, r.Label)
	case PeriodMonthly:
		return fmt.Sprintf("Месячный отчет по посещаемости отдела %s за %s", department, r.Label),
			fmt.Sprintf("Месячный отчет по посещаемости сотрудников отдела %s за %s", department, r.Label)
	default:
		return fmt.Sprintf("Отчет по посещаемости отдела %s за %s", department, r.Label),
			fmt.Sprintf("Отчет по посещаемости сотрудников отдела %s за %s", department, r.Label)
	}
}
