package pipeline

import (
	"testing"
	"time"

	"attendance-reporter/internal/models"
)

func classified(ts time.Time, d models.Direction) models.ClassifiedEvent {
	return models.ClassifiedEvent{
		RawEvent:  models.RawEvent{EmployeeID: "E1", Timestamp: ts},
		Direction: d,
	}
}

func TestClassify(t *testing.T) {
	n := NewNormalizer([]int{ok}, []string{"Проходная", "Office"}, []string{" улица ", "Street"})

	tests := []struct {
		name string
		from string
		to   string
		want models.Direction
	}{
		{name: "Outer to inner", from: "Улица", to: "Проходная", want: models.DirectionIn},
		{name: "Inner to outer", from: "Проходная", to: "Улица", want: models.DirectionOut},
		{name: "Case and whitespace insensitive", from: "  УЛИЦА", to: "проходная ", want: models.DirectionIn},
		{name: "Latin names", from: "office", to: "STREET", want: models.DirectionOut},
		{name: "Inner to inner", from: "Office", to: "Проходная", want: models.DirectionUnknown},
		{name: "Unknown zones", from: "Склад", to: "Цех", want: models.DirectionUnknown},
		{name: "Empty zones", from: "", to: "", want: models.DirectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Classify(tt.from, tt.to)
			if got != tt.want {
				t.Errorf("Classify(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestClassifyIdempotent(t *testing.T) {
	n := NewNormalizer([]int{ok}, []string{inner}, []string{outer})
	events := n.Normalize([]models.RawEvent{
		enter("E1", at(8, 0, 0)),
		leave("E1", at(9, 0, 0)),
		swipe("E1", at(10, 0, 0), "x", "y"),
	})

	for _, e := range events {
		if again := n.Classify(e.FromZone, e.ToZone); again != e.Direction {
			t.Errorf("reclassified %v as %v", e.Direction, again)
		}
	}
}

func TestNormalizeFiltersStatus(t *testing.T) {
	n := NewNormalizer([]int{1, 2}, []string{inner}, []string{outer})

	bad := enter("E1", at(8, 0, 0))
	bad.StatusCode = 7
	second := leave("E2", at(9, 0, 0))
	second.StatusCode = 2

	got := n.Normalize([]models.RawEvent{bad, enter("E1", at(8, 1, 0)), second})
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].EmployeeID != "E1" || got[0].Direction != models.DirectionIn {
		t.Errorf("unexpected first event %+v", got[0])
	}
	if got[1].EmployeeID != "E2" || got[1].Direction != models.DirectionOut {
		t.Errorf("unexpected second event %+v", got[1])
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := NewNormalizer(nil, nil, nil)
	if got := n.Normalize(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestDebounce(t *testing.T) {
	tests := []struct {
		name   string
		window time.Duration
		events []models.ClassifiedEvent
		want   []time.Time
	}{
		{
			name:   "Repeat inside window dropped",
			window: 2 * time.Second,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(8, 0, 1), models.DirectionIn),
			},
			want: []time.Time{at(8, 0, 0)},
		},
		{
			name:   "Repeat exactly at window is a bounce",
			window: 2 * time.Second,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(8, 0, 2), models.DirectionIn),
			},
			want: []time.Time{at(8, 0, 0)},
		},
		{
			name:   "Repeat after window kept",
			window: 2 * time.Second,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(8, 0, 3), models.DirectionIn),
			},
			want: []time.Time{at(8, 0, 0), at(8, 0, 3)},
		},
		{
			name:   "Window measured from last kept event",
			window: 2 * time.Second,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(8, 0, 1), models.DirectionIn),
				classified(at(8, 0, 2), models.DirectionIn),
				classified(at(8, 0, 3), models.DirectionIn),
			},
			want: []time.Time{at(8, 0, 0), at(8, 0, 3)},
		},
		{
			name:   "Opposite directions do not suppress each other",
			window: time.Minute,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(8, 0, 1), models.DirectionOut),
				classified(at(8, 0, 2), models.DirectionIn),
			},
			want: []time.Time{at(8, 0, 0), at(8, 0, 1)},
		},
		{
			name:   "Zero window drops only identical timestamps",
			window: 0,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionOut),
				classified(at(8, 0, 0), models.DirectionOut),
				classified(at(8, 0, 0).Add(time.Millisecond), models.DirectionOut),
			},
			want: []time.Time{at(8, 0, 0), at(8, 0, 0).Add(time.Millisecond)},
		},
		{
			name:   "Unknown events pass through",
			window: time.Hour,
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionUnknown),
				classified(at(8, 0, 1), models.DirectionUnknown),
			},
			want: []time.Time{at(8, 0, 0), at(8, 0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Debounce(tt.events, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("kept %d events, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !got[i].Timestamp.Equal(tt.want[i]) {
					t.Errorf("event %d at %v, want %v", i, got[i].Timestamp, tt.want[i])
				}
			}
		})
	}
}

func TestDebounceKeptGapsExceedWindow(t *testing.T) {
	window := 3 * time.Second
	var events []models.ClassifiedEvent
	for i := 0; i < 50; i++ {
		events = append(events, classified(at(8, 0, 0).Add(time.Duration(i)*700*time.Millisecond), models.DirectionIn))
	}

	kept := Debounce(events, window)
	for i := 1; i < len(kept); i++ {
		if gap := kept[i].Timestamp.Sub(kept[i-1].Timestamp); gap <= window {
			t.Errorf("gap %v between kept events %d and %d is not above %v", gap, i-1, i, window)
		}
	}
}

func TestPair(t *testing.T) {
	tests := []struct {
		name   string
		events []models.ClassifiedEvent
		want   int
	}{
		{
			name: "Alternating crossings",
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(12, 0, 0), models.DirectionOut),
				classified(at(13, 0, 0), models.DirectionIn),
				classified(at(17, 0, 0), models.DirectionOut),
			},
			want: 2,
		},
		{
			name: "Double OUT emits once",
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(12, 0, 0), models.DirectionOut),
				classified(at(12, 30, 0), models.DirectionOut),
			},
			want: 1,
		},
		{
			name: "Unknown between IN and OUT ignored",
			events: []models.ClassifiedEvent{
				classified(at(8, 0, 0), models.DirectionIn),
				classified(at(9, 0, 0), models.DirectionUnknown),
				classified(at(10, 0, 0), models.DirectionOut),
			},
			want: 1,
		},
		{
			name:   "Only IN",
			events: []models.ClassifiedEvent{classified(at(8, 0, 0), models.DirectionIn)},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pair(tt.events)
			if len(got) != tt.want {
				t.Fatalf("Pair() produced %d intervals, want %d", len(got), tt.want)
			}
			for _, iv := range got {
				if iv.Total < 0 || iv.Total != iv.Departure.Sub(iv.Arrival) {
					t.Errorf("bad interval %+v", iv)
				}
			}
		})
	}
}
