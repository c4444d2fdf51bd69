package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"attendance-reporter/internal/models"
)

// Normalizer filters raw events by status and labels them with a direction
type Normalizer struct {
	success map[int]struct{}
	inner   map[string]struct{}
	outer   map[string]struct{}
}

// NewNormalizer creates a normalizer for the given status and zone sets
func NewNormalizer(successStatuses []int, innerZones, outerZones []string) *Normalizer {
	n := &Normalizer{
		success: make(map[int]struct{}, len(successStatuses)),
		inner:   zoneSet(innerZones),
		outer:   zoneSet(outerZones),
	}
	for _, code := range successStatuses {
		n.success[code] = struct{}{}
	}
	return n
}

// Normalize drops events with a non-success status and classifies the rest.
// Input order is preserved.
func (n *Normalizer) Normalize(events []models.RawEvent) []models.ClassifiedEvent {
	if len(events) == 0 {
		return nil
	}

	out := make([]models.ClassifiedEvent, 0, len(events))
	for _, e := range events {
		if !n.IsSuccess(e.StatusCode) {
			continue
		}
		out = append(out, models.ClassifiedEvent{
			RawEvent:  e,
			Direction: n.Classify(e.FromZone, e.ToZone),
		})
	}
	return out
}

// IsSuccess reports whether a status code is admissible
func (n *Normalizer) IsSuccess(code int) bool {
	_, ok := n.success[code]
	return ok
}

// Classify derives the crossing direction from a zone pair
func (n *Normalizer) Classify(fromZone, toZone string) models.Direction {
	from := foldZone(fromZone)
	to := foldZone(toZone)

	switch {
	case n.isOuter(from) && n.isInner(to):
		return models.DirectionIn
	case n.isInner(from) && n.isOuter(to):
		return models.DirectionOut
	default:
		return models.DirectionUnknown
	}
}

func (n *Normalizer) isInner(zone string) bool {
	if zone == "" {
		return false
	}
	_, ok := n.inner[zone]
	return ok
}

func (n *Normalizer) isOuter(zone string) bool {
	if zone == "" {
		return false
	}
	_, ok := n.outer[zone]
	return ok
}

func zoneSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if z := foldZone(name); z != "" {
			set[z] = struct{}{}
		}
	}
	return set
}

// foldZone trims and case-folds a zone name. Zone names come from the
// access-control vendor in Cyrillic, so folding goes through x/text.
func foldZone(zone string) string {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return ""
	}
	return cases.Fold().String(norm.NFC.String(zone))
}
