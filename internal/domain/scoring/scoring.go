// Package scoring computes per-event relevance scores from rank, predicted
// attendance, time-to-start urgency, and a category multiplier.
package scoring

import (
	"math"
	"time"

	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
)

// Scoring constants.
const (
	// attendanceScale converts predicted head counts into score points.
	attendanceScale = 0.0001
	// attendanceCap dampens mega-events so crowd size alone cannot
	// dominate the ranking.
	attendanceCap = 30.0

	// Urgency is a two-tier step function rather than a continuous decay,
	// keeping tie-breaking predictable.
	urgencySoonHours  = 24.0
	urgencyNearHours  = 72.0
	urgencySoonPoints = 40.0
	urgencyNearPoints = 20.0

	// NeutralScore is assigned when scoring fails for an event; the event
	// stays in the rankable set either way.
	NeutralScore = 50.0
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the term weights.
func WithWeights(w config.Weights) Option {
	return func(s *Scorer) {
		if w.Rank > 0 && w.Attendance > 0 && w.Urgency > 0 {
			s.weights = w
		}
	}
}

// WithBoosts sets the per-category multipliers. Non-positive entries are
// dropped.
func WithBoosts(boosts map[category.Category]float64) Option {
	return func(s *Scorer) {
		s.boosts = make(map[category.Category]float64, len(boosts))
		for c, mult := range boosts {
			if mult > 0 {
				s.boosts[c] = mult
			}
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer computes relevance scores. Aside from writing the result onto the
// event, Score is a pure function of the event and the configured weights.
type Scorer struct {
	weights config.Weights
	boosts  map[category.Category]float64
	now     func() time.Time
}

// New constructs a Scorer with the built-in default weights and boosts.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: config.Weights{Rank: 0.6, Attendance: 0.3, Urgency: 0.4},
		boosts:  category.DefaultBoosts(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the relevance score for e, writes it onto the event, and
// returns it. A nil event or a pathological result yields NeutralScore so
// every fetched event ends up in the rankable set.
func (s *Scorer) Score(e *model.Event) float64 {
	if e == nil {
		return NeutralScore
	}
	score := s.compute(e)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = NeutralScore
	}
	e.Score = &score
	return score
}

func (s *Scorer) compute(e *model.Event) float64 {
	score := 0.0

	if e.Rank != nil {
		score += float64(*e.Rank) * s.weights.Rank
	}

	if e.PredictedAttendance != nil {
		att := math.Min(float64(*e.PredictedAttendance)*attendanceScale, attendanceCap)
		score += att * s.weights.Attendance
	}

	if e.Start != nil {
		hoursUntil := e.Start.Sub(s.now().UTC()).Hours()
		switch {
		case hoursUntil < urgencySoonHours:
			score += urgencySoonPoints * s.weights.Urgency
		case hoursUntil < urgencyNearHours:
			score += urgencyNearPoints * s.weights.Urgency
		}
	}

	// The boost is multiplicative and applied last, scaling the whole
	// accumulated score.
	boost, ok := s.boosts[e.Category]
	if !ok {
		boost = 1.0
	}
	return score * boost
}
