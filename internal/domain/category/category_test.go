package category_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/towncrier-app/towncrier/internal/domain/category"
)

func TestCategoryPartition(t *testing.T) {
	Convey("Given the category taxonomy", t, func() {
		Convey("Then it contains all twelve provider categories", func() {
			So(category.All(), ShouldHaveLength, 12)
		})

		Convey("Then exactly the weather, disaster, and airport categories are alerts", func() {
			alerts := 0
			for _, c := range category.All() {
				if c.IsAlert() {
					alerts++
				}
			}
			So(alerts, ShouldEqual, 3)
			So(category.SevereWeather.IsAlert(), ShouldBeTrue)
			So(category.Disasters.IsAlert(), ShouldBeTrue)
			So(category.AirportDelays.IsAlert(), ShouldBeTrue)
			So(category.Concerts.IsAlert(), ShouldBeFalse)
			So(category.Community.IsAlert(), ShouldBeFalse)
		})

		Convey("Then ticket assumptions follow the fixed tables", func() {
			So(category.Concerts.AlwaysTicketed(), ShouldBeTrue)
			So(category.Sports.AlwaysTicketed(), ShouldBeTrue)
			So(category.PerformingArts.AlwaysTicketed(), ShouldBeTrue)
			So(category.Academic.NeverTicketed(), ShouldBeTrue)
			So(category.SchoolHolidays.NeverTicketed(), ShouldBeTrue)
			So(category.Community.AlwaysTicketed(), ShouldBeFalse)
			So(category.Community.NeverTicketed(), ShouldBeFalse)
		})
	})
}

func TestTitle(t *testing.T) {
	Convey("Given categories with and without hyphens", t, func() {
		Convey("Then Title capitalizes each hyphenated part", func() {
			So(category.Community.Title(), ShouldEqual, "Community")
			So(category.PerformingArts.Title(), ShouldEqual, "Performing-Arts")
			So(category.SchoolHolidays.Title(), ShouldEqual, "School-Holidays")
		})
	})
}

func TestParseList(t *testing.T) {
	Convey("Given comma-separated configuration values", t, func() {
		Convey("When the list has whitespace around entries", func() {
			cats := category.ParseList(" concerts , sports,festivals ")
			So(cats, ShouldResemble, []category.Category{
				category.Concerts, category.Sports, category.Festivals,
			})
		})

		Convey("When the list is empty", func() {
			So(category.ParseList(""), ShouldBeEmpty)
		})

		Convey("When the list has empty entries", func() {
			So(category.ParseList(",,community,"), ShouldResemble,
				[]category.Category{category.Community})
		})
	})
}

func TestDefaultBoosts(t *testing.T) {
	Convey("Given the built-in boost table", t, func() {
		boosts := category.DefaultBoosts()

		Convey("Then the three boosted categories carry their multipliers", func() {
			So(boosts[category.Concerts], ShouldEqual, 1.3)
			So(boosts[category.Festivals], ShouldEqual, 1.2)
			So(boosts[category.Sports], ShouldEqual, 1.1)
		})

		Convey("Then unboosted categories are absent from the table", func() {
			_, ok := boosts[category.Community]
			So(ok, ShouldBeFalse)
		})
	})
}
