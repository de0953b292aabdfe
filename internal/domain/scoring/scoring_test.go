package scoring_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/internal/domain/scoring"
)

func intPtr(v int) *int { return &v }

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func TestScorer_Score(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a scorer with default weights", t, func() {
		scorer := scoring.New(scoring.WithClock(fixedClock(now)))

		Convey("When an event has no rank, attendance, or start", func() {
			e := &model.Event{Title: "Bare Event", Category: category.Community}

			Convey("Then its score is zero, boosted or not", func() {
				So(scorer.Score(e), ShouldEqual, 0)
				So(e.Score, ShouldNotBeNil)
				So(*e.Score, ShouldEqual, 0)
			})
		})

		Convey("When an event has only a rank", func() {
			e := &model.Event{Title: "Ranked", Category: category.Community, Rank: intPtr(80)}

			Convey("Then the score is rank times the rank weight", func() {
				So(scorer.Score(e), ShouldAlmostEqual, 80*0.6, 1e-9)
			})
		})

		Convey("Then the score is monotonically non-decreasing in rank", func() {
			low := &model.Event{Category: category.Community, Rank: intPtr(30)}
			high := &model.Event{Category: category.Community, Rank: intPtr(60)}
			So(scorer.Score(high), ShouldBeGreaterThan, scorer.Score(low))
		})

		Convey("When attendance grows past the cap", func() {
			capped := &model.Event{Category: category.Community, PredictedAttendance: intPtr(300_000)}
			huge := &model.Event{Category: category.Community, PredictedAttendance: intPtr(3_000_000)}

			Convey("Then the attendance term stops growing", func() {
				So(scorer.Score(capped), ShouldAlmostEqual, 30*0.3, 1e-9)
				So(scorer.Score(huge), ShouldAlmostEqual, 30*0.3, 1e-9)
			})
		})

		Convey("When attendance is below the cap", func() {
			small := &model.Event{Category: category.Community, PredictedAttendance: intPtr(10_000)}
			big := &model.Event{Category: category.Community, PredictedAttendance: intPtr(100_000)}

			Convey("Then the score is non-decreasing in attendance", func() {
				So(scorer.Score(small), ShouldAlmostEqual, 1.0*0.3, 1e-9)
				So(scorer.Score(big), ShouldBeGreaterThan, small.ScoreValue())
			})
		})

		Convey("When events differ only in time to start", func() {
			in12h := now.Add(12 * time.Hour)
			in48h := now.Add(48 * time.Hour)
			in96h := now.Add(96 * time.Hour)

			soon := &model.Event{Category: category.Community, Start: &in12h}
			near := &model.Event{Category: category.Community, Start: &in48h}
			far := &model.Event{Category: category.Community, Start: &in96h}

			Convey("Then urgency is tiered 40, 20, 0 points", func() {
				So(scorer.Score(soon), ShouldAlmostEqual, 40*0.4, 1e-9)
				So(scorer.Score(near), ShouldAlmostEqual, 20*0.4, 1e-9)
				So(scorer.Score(far), ShouldEqual, 0)
				So(soon.ScoreValue(), ShouldBeGreaterThan, near.ScoreValue())
				So(near.ScoreValue(), ShouldBeGreaterThan, far.ScoreValue())
			})
		})

		Convey("When the category carries a boost", func() {
			plain := &model.Event{Category: category.Community, Rank: intPtr(50)}
			boosted := &model.Event{Category: category.Concerts, Rank: intPtr(50)}

			Convey("Then the multiplier scales the whole score", func() {
				So(scorer.Score(plain), ShouldAlmostEqual, 50*0.6, 1e-9)
				So(scorer.Score(boosted), ShouldAlmostEqual, 50*0.6*1.3, 1e-9)
			})
		})

		Convey("When the event is nil", func() {
			Convey("Then the neutral score is returned", func() {
				So(scorer.Score(nil), ShouldEqual, scoring.NeutralScore)
			})
		})
	})
}

func TestScorer_Options(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given a scorer with custom weights and boosts", t, func() {
		scorer := scoring.New(
			scoring.WithClock(fixedClock(now)),
			scoring.WithWeights(config.Weights{Rank: 1.0, Attendance: 1.0, Urgency: 1.0}),
			scoring.WithBoosts(map[category.Category]float64{category.Expos: 2.0}),
		)

		Convey("Then the custom weights apply", func() {
			e := &model.Event{Category: category.Community, Rank: intPtr(10)}
			So(scorer.Score(e), ShouldAlmostEqual, 10.0, 1e-9)
		})

		Convey("Then the custom boost applies and defaults are replaced", func() {
			expo := &model.Event{Category: category.Expos, Rank: intPtr(10)}
			concert := &model.Event{Category: category.Concerts, Rank: intPtr(10)}
			So(scorer.Score(expo), ShouldAlmostEqual, 20.0, 1e-9)
			So(scorer.Score(concert), ShouldAlmostEqual, 10.0, 1e-9)
		})
	})

	Convey("Given invalid weights", t, func() {
		scorer := scoring.New(
			scoring.WithClock(fixedClock(now)),
			scoring.WithWeights(config.Weights{Rank: -1}),
		)

		Convey("Then the built-in defaults are kept", func() {
			e := &model.Event{Category: category.Community, Rank: intPtr(100)}
			So(scorer.Score(e), ShouldAlmostEqual, 100*0.6, 1e-9)
		})
	})
}
