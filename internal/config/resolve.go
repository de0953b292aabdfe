package config

import (
	"time"

	"github.com/towncrier-app/towncrier/internal/domain/category"
)

const (
	dateLayout        = "2006-01-02"
	defaultWindowDays = 30
)

// WindowSource names the path DateWindow took, so callers and tests can
// assert which policy applied rather than inferring it from the dates.
type WindowSource string

const (
	// WindowDefault is the 30-day window used when time framing is disabled.
	WindowDefault WindowSource = "default"
	// WindowForced is the configured window taken literally, unvalidated.
	WindowForced WindowSource = "forced"
	// WindowCustom is the configured window after validation.
	WindowCustom WindowSource = "custom"
	// WindowFellBack is the 30-day window substituted for an invalid
	// custom window.
	WindowFellBack WindowSource = "fell_back"
)

// DateWindow is a calendar date range, both bounds inclusive.
type DateWindow struct {
	Start  string
	End    string
	Source WindowSource
}

// ScoringParams are the resolved relevance-scoring inputs.
type ScoringParams struct {
	Weights Weights
	Boosts  map[category.Category]float64
}

// Resolver turns a raw Config into validated run parameters. Every method
// degrades to built-in defaults instead of failing; the one exception is
// DateWindow when fallback is explicitly disallowed.
type Resolver struct {
	cfg *Config
}

// NewResolver creates a Resolver over cfg. A nil cfg resolves everything to
// defaults.
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		cfg = New()
	}
	return &Resolver{cfg: cfg}
}

// Categories resolves the ordered category list to process: the full
// taxonomy when use_all_categories is set, else the explicit configured
// list, else community alone.
func (r *Resolver) Categories() []category.Category {
	if r.cfg.Events.UseAllCategories {
		return category.All()
	}
	if cats := category.ParseList(r.cfg.Events.Categories); len(cats) > 0 {
		return cats
	}
	return []category.Category{category.Community}
}

// DateWindow resolves the fetch window relative to now.
//
// Policy, in priority order: time framing disabled -> default 30-day window;
// force_custom -> configured dates taken literally; otherwise configured
// dates validated for format and ordering, reverting to the default window
// when fallback is permitted and failing with ErrInvalidDate when it is not.
func (r *Resolver) DateWindow(now time.Time) (DateWindow, error) {
	tf := r.cfg.TimeFrame

	if !tf.Enabled {
		return r.defaultWindow(now, WindowDefault), nil
	}

	if tf.ForceCustom {
		return DateWindow{Start: tf.StartDate, End: tf.EndDate, Source: WindowForced}, nil
	}

	start, serr := time.Parse(dateLayout, tf.StartDate)
	end, eerr := time.Parse(dateLayout, tf.EndDate)
	if serr == nil && eerr == nil && !start.After(end) {
		return DateWindow{Start: tf.StartDate, End: tf.EndDate, Source: WindowCustom}, nil
	}

	if tf.FallbackToDefault {
		return r.defaultWindow(now, WindowFellBack), nil
	}
	return DateWindow{}, ErrInvalidDate
}

func (r *Resolver) defaultWindow(now time.Time, src WindowSource) DateWindow {
	return DateWindow{
		Start:  now.UTC().Format(dateLayout),
		End:    now.UTC().AddDate(0, 0, defaultWindowDays).Format(dateLayout),
		Source: src,
	}
}

// ScoringParams resolves scoring weights and category boosts, substituting
// built-in defaults for anything missing or malformed. This never fails; it
// is the safety net for the whole pipeline.
func (r *Resolver) ScoringParams() ScoringParams {
	w := r.cfg.Selection.Weights
	if w.Rank <= 0 || w.Attendance <= 0 || w.Urgency <= 0 {
		w = New().Selection.Weights
	}

	boosts := make(map[category.Category]float64)
	for name, mult := range r.cfg.Selection.CategoryBoosts {
		if mult > 0 {
			boosts[category.Category(name)] = mult
		}
	}
	if len(boosts) == 0 {
		boosts = category.DefaultBoosts()
	}

	return ScoringParams{Weights: w, Boosts: boosts}
}
