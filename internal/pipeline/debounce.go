package pipeline

import (
	"time"

	"attendance-reporter/internal/models"
)

// lastKept holds the timestamp of the last kept crossing per direction.
// A nil pointer means no event of that direction has been kept yet.
type lastKept struct {
	in  *time.Time
	out *time.Time
}

func (l *lastKept) slot(d models.Direction) **time.Time {
	switch d {
	case models.DirectionIn:
		return &l.in
	case models.DirectionOut:
		return &l.out
	default:
		return nil
	}
}

// Debounce drops same-direction repeats that arrive within window of the
// previous kept event of that direction. The group must belong to a single
// employee and be sorted by timestamp. An event is kept only when
// elapsed > window, so a repeat at exactly window is a bounce.
// UNKNOWN events carry no debounce state and are passed through.
func Debounce(group []models.ClassifiedEvent, window time.Duration) []models.ClassifiedEvent {
	if len(group) == 0 {
		return nil
	}

	var state lastKept
	kept := make([]models.ClassifiedEvent, 0, len(group))
	for _, e := range group {
		slot := state.slot(e.Direction)
		if slot == nil {
			kept = append(kept, e)
			continue
		}

		if *slot != nil && e.Timestamp.Sub(**slot) <= window {
			continue
		}

		ts := e.Timestamp
		*slot = &ts
		kept = append(kept, e)
	}
	return kept
}
