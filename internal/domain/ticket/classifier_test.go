package ticket_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/internal/domain/ticket"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestNeedsTicket(t *testing.T) {
	Convey("Given the ticket-need classifier", t, func() {
		Convey("When the title says the event is free", func() {
			e := &model.Event{Title: "Free Community Picnic", Category: category.Community}
			needs, reason := ticket.NeedsTicket(e)

			Convey("Then it is not ticketed, with the free-event reason", func() {
				So(needs, ShouldBeFalse)
				So(reason, ShouldEqual, "Free or community event")
			})
		})

		Convey("When the title says no charge, even for a concert", func() {
			e := &model.Event{Title: "Symphony in the Park - No Charge", Category: category.Concerts}
			needs, _ := ticket.NeedsTicket(e)

			Convey("Then the exclusion wins over the category rule", func() {
				So(needs, ShouldBeFalse)
			})
		})

		Convey("When the category is never ticketed", func() {
			e := &model.Event{Title: "Spring Break", Category: category.SchoolHolidays, Rank: intPtr(90)}
			needs, _ := ticket.NeedsTicket(e)

			Convey("Then it is not ticketed despite a high rank", func() {
				So(needs, ShouldBeFalse)
			})
		})

		Convey("When the category is always ticketed", func() {
			e := &model.Event{Title: "Evening Show", Category: category.Concerts}
			needs, reason := ticket.NeedsTicket(e)

			Convey("Then it is ticketed with no other signals", func() {
				So(needs, ShouldBeTrue)
				So(reason, ShouldBeEmpty)
			})
		})

		Convey("When a venue entity names a ticketed venue type", func() {
			e := &model.Event{
				Title:    "Annual Gala",
				Category: category.Community,
				Entities: []model.Entity{
					{Type: "organizer", Name: "City Council"},
					{Type: "venue", Name: "Riverside Amphitheatre"},
				},
			}
			needs, _ := ticket.NeedsTicket(e)

			Convey("Then it is ticketed", func() {
				So(needs, ShouldBeTrue)
			})
		})

		Convey("When a community event has rank at the threshold", func() {
			e := &model.Event{Title: "County Fair", Category: category.Community, Rank: intPtr(60)}
			needs, _ := ticket.NeedsTicket(e)

			Convey("Then the rank rule fires before the default", func() {
				So(needs, ShouldBeTrue)
			})
		})

		Convey("When predicted attendance reaches a thousand", func() {
			e := &model.Event{Title: "Food Truck Rally", Category: category.Community, PredictedAttendance: intPtr(1000)}
			needs, _ := ticket.NeedsTicket(e)

			So(needs, ShouldBeTrue)
		})

		Convey("When predicted spend is high", func() {
			e := &model.Event{Title: "Trade Meetup", Category: category.Conferences, PredictedSpend: floatPtr(75000)}
			needs, _ := ticket.NeedsTicket(e)

			So(needs, ShouldBeTrue)
		})

		Convey("When no signal fires", func() {
			e := &model.Event{
				Title:               "Neighborhood Cleanup",
				Category:            category.Community,
				Rank:                intPtr(20),
				PredictedAttendance: intPtr(50),
			}
			needs, reason := ticket.NeedsTicket(e)

			Convey("Then partial data degrades to not ticketed", func() {
				So(needs, ShouldBeFalse)
				So(reason, ShouldEqual, ticket.FreeEventReason)
			})
		})
	})
}
