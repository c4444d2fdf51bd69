// Package pipeline converts raw access-control pass events into per-employee
// attendance intervals.
//
// The pipeline is pure: it never touches the database, the file system or
// the wall clock. Events are grouped by employee and every group runs its own
// debounce and pairing state machine, so groups are independent of each other.
package pipeline

import (
	"slices"
	"sort"
	"time"

	"attendance-reporter/internal/models"
)

// Config holds the classification and debounce settings of one run
type Config struct {
	SuccessStatuses  []int
	InnerZones       []string
	OuterZones       []string
	DebounceWindowMs int
}

// Stats counts what happened to the events of one run
type Stats struct {
	Raw             int
	RejectedStatus  int
	UnknownCrossing int
	Bounces         int
	Intervals       int
}

// Result is the output of one pipeline run
type Result struct {
	Intervals []models.AttendanceInterval
	Stats     Stats
}

// Pipeline runs normalize -> debounce -> pair over a batch of events
type Pipeline struct {
	normalizer *Normalizer
	window     time.Duration
}

// New creates a pipeline from its configuration
func New(cfg Config) *Pipeline {
	window := time.Duration(cfg.DebounceWindowMs) * time.Millisecond
	if window < 0 {
		window = 0
	}
	return &Pipeline{
		normalizer: NewNormalizer(cfg.SuccessStatuses, cfg.InnerZones, cfg.OuterZones),
		window:     window,
	}
}

// Normalizer exposes the classifier used by the pipeline
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// Run processes one batch. Intervals are ordered by employee ID and, within
// an employee, by arrival time.
func (p *Pipeline) Run(events []models.RawEvent) Result {
	res := Result{Stats: Stats{Raw: len(events)}}

	classified := p.normalizer.Normalize(events)
	res.Stats.RejectedStatus = len(events) - len(classified)

	for _, e := range classified {
		if e.Direction == models.DirectionUnknown {
			res.Stats.UnknownCrossing++
		}
	}

	ids, groups := GroupByEmployee(classified)
	for _, id := range ids {
		group := groups[id]
		debounced := Debounce(group, p.window)
		res.Stats.Bounces += len(group) - len(debounced)
		res.Intervals = append(res.Intervals, Pair(debounced)...)
	}

	res.Stats.Intervals = len(res.Intervals)
	return res
}

// GroupByEmployee splits events into per-employee slices sorted by timestamp.
// The sort is stable, so events with equal timestamps keep their input order.
// The returned IDs are sorted ascending.
func GroupByEmployee(events []models.ClassifiedEvent) ([]string, map[string][]models.ClassifiedEvent) {
	groups := make(map[string][]models.ClassifiedEvent)
	for _, e := range events {
		groups[e.EmployeeID] = append(groups[e.EmployeeID], e)
	}

	ids := make([]string, 0, len(groups))
	for id, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids, groups
}
