// Package ticket decides whether an event plausibly requires paid admission.
package ticket

import (
	"strings"

	"github.com/towncrier-app/towncrier/internal/domain/model"
)

// Classification thresholds. No single attribute is load-bearing; events
// with mostly-missing provider fields degrade to "no ticket needed".
const (
	minTicketedRank       = 50
	minTicketedAttendance = 1000
	minTicketedSpend      = 50000
)

// FreeEventReason backs every negative classification.
const FreeEventReason = "Free or community event"

// venueKeywords mark venue names that imply ticketed admission.
var venueKeywords = []string{
	"amphitheatre", "stadium", "arena", "theater", "theatre",
	"auditorium", "coliseum",
}

// NeedsTicket classifies e from its attributes alone. The rule order
// matters: exclusion signals are checked before inclusion signals, first
// match wins.
func NeedsTicket(e *model.Event) (bool, string) {
	title := strings.ToLower(e.Title)
	if strings.Contains(title, "free") || strings.Contains(title, "no charge") {
		return false, FreeEventReason
	}

	if e.Category.NeverTicketed() {
		return false, FreeEventReason
	}

	if e.Category.AlwaysTicketed() {
		return true, ""
	}

	for _, ent := range e.Entities {
		if ent.Type != "venue" {
			continue
		}
		name := strings.ToLower(ent.Name)
		for _, kw := range venueKeywords {
			if strings.Contains(name, kw) {
				return true, ""
			}
		}
	}

	if e.Rank != nil && *e.Rank >= minTicketedRank {
		return true, ""
	}

	if e.PredictedAttendance != nil && *e.PredictedAttendance >= minTicketedAttendance {
		return true, ""
	}

	if e.PredictedSpend != nil && *e.PredictedSpend >= minTicketedSpend {
		return true, ""
	}

	return false, FreeEventReason
}
