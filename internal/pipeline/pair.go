package pipeline

import (
	"time"

	"attendance-reporter/internal/models"
)

// Pair turns one employee's debounced, time-ordered crossings into
// attendance intervals. The most recent IN before an OUT wins; an OUT
// without a pending IN and a trailing IN without an OUT are dropped.
func Pair(group []models.ClassifiedEvent) []models.AttendanceInterval {
	var (
		intervals []models.AttendanceInterval
		pendingIn *time.Time
	)

	for _, e := range group {
		switch e.Direction {
		case models.DirectionIn:
			ts := e.Timestamp
			pendingIn = &ts
		case models.DirectionOut:
			if pendingIn == nil {
				continue
			}
			intervals = append(intervals, models.AttendanceInterval{
				EmployeeID: e.EmployeeID,
				Arrival:    *pendingIn,
				Departure:  e.Timestamp,
				Total:      e.Timestamp.Sub(*pendingIn),
			})
			pendingIn = nil
		}
	}
	return intervals
}
