// Package model contains domain models passed between pipeline stages.
package model

import (
	"time"

	"github.com/towncrier-app/towncrier/internal/domain/category"
)

// Event represents one occurrence fetched from the events provider or
// synthesized by the fallback store. JSON tags mirror the provider's wire
// names so archived documents round-trip unchanged.
type Event struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Category    category.Category `json:"category"`

	// Start is the UTC instant the event begins; nil when the provider
	// omitted it. Events without a start never receive an urgency bonus.
	Start *time.Time `json:"start,omitempty"`

	// StartLocal is the wall-clock start in the source timezone, as the
	// provider sent it.
	StartLocal string `json:"start_local,omitempty"`

	// TimeStr is the human-readable rendering of StartLocal, stamped at
	// fetch time. When StartLocal fails to parse it carries the raw string.
	TimeStr string `json:"time_str,omitempty"`

	Rank                *int     `json:"rank,omitempty"`
	PredictedAttendance *int     `json:"phq_attendance,omitempty"`
	PredictedSpend      *float64 `json:"predicted_event_spend,omitempty"`

	Entities []Entity `json:"entities,omitempty"`
	Geo      *Geo     `json:"geo,omitempty"`

	// Score is assigned by the relevance scorer; nil until scored. Only
	// routine-category events are ever scored.
	Score *float64 `json:"score,omitempty"`

	// TicketResult is attached by the ticket-resolution step for selected
	// events.
	TicketResult *TicketResolution `json:"ticket_result,omitempty"`
}

// Entity is a named entity attached to an event, discriminated by Type
// (e.g. "venue").
type Entity struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Geo carries the provider's address block for an event.
type Geo struct {
	Address Address `json:"address"`
}

// Address is the provider's formatted address breakdown.
type Address struct {
	Locality         string `json:"locality,omitempty"`
	Region           string `json:"region,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
}

// VenueName returns the first venue-typed entity name, falling back to the
// formatted address, then "Location TBD".
func (e *Event) VenueName() string {
	for _, ent := range e.Entities {
		if ent.Type == "venue" && ent.Name != "" {
			return ent.Name
		}
	}
	if e.Geo != nil && e.Geo.Address.FormattedAddress != "" {
		return e.Geo.Address.FormattedAddress
	}
	return "Location TBD"
}

// City returns the provider's locality for the event, if any.
func (e *Event) City() string {
	if e.Geo == nil {
		return ""
	}
	return e.Geo.Address.Locality
}

// Region returns the provider's region (state) for the event, if any.
func (e *Event) Region() string {
	if e.Geo == nil {
		return ""
	}
	return e.Geo.Address.Region
}

// LocalDate returns the date portion of StartLocal ("2006-01-02"), or ""
// when no local start is known.
func (e *Event) LocalDate() string {
	if e.StartLocal == "" {
		return ""
	}
	if n := len("2006-01-02"); len(e.StartLocal) > n {
		return e.StartLocal[:n]
	}
	return e.StartLocal
}

// ScoreValue returns the assigned score, or 0 when unscored.
func (e *Event) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// MaxBucketSize caps the curated selection per routine category.
const MaxBucketSize = 2

// CategoryBucket is the curated result for one routine category: at most
// MaxBucketSize events ordered by descending score, ties broken by fetch
// order.
type CategoryBucket struct {
	Category category.Category `json:"category"`
	Events   []*Event          `json:"events"`
}

// AlertCollection accumulates events from alert categories across one
// pipeline run. Alert events are never scored or truncated.
type AlertCollection []*Event
