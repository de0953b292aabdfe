package model

import "github.com/towncrier-app/towncrier/internal/domain/category"

// TicketResolution is the outcome of ticket search for one event.
//
// TicketInfo is present only when NeedsTicket is true and the external
// search succeeded. NeedsTicket true with a nil TicketInfo means the search
// failed or found nothing, which callers must not confuse with "not
// ticketed".
type TicketResolution struct {
	NeedsTicket bool `json:"needs_ticket"`

	// Reason explains a negative classification; empty otherwise.
	Reason string `json:"reason,omitempty"`

	TicketInfo   *TicketInfo   `json:"ticket_info,omitempty"`
	EventDetails *EventDetails `json:"event_details,omitempty"`
}

// TicketInfo carries the catalog listing matched to the source event.
type TicketInfo struct {
	TicketURL string `json:"ticket_url,omitempty"`

	// PriceRange is formatted "$<min>-$<max> <currency>" or the literal
	// "Price varies".
	PriceRange string `json:"price_range"`

	Venue  string `json:"venue,omitempty"`
	Date   string `json:"date,omitempty"`
	Source string `json:"source"`
}

// EventDetails is a denormalized snapshot of the source event embedded in a
// ticket resolution for downstream consumers.
type EventDetails struct {
	Title      string            `json:"title"`
	Date       string            `json:"date,omitempty"`
	Venue      string            `json:"venue,omitempty"`
	Category   category.Category `json:"category"`
	Attendance *int              `json:"attendance,omitempty"`
	Rank       *int              `json:"rank,omitempty"`
}
