// Package app orchestrates one curation run: category resolution, fetch,
// fallback substitution, scoring, top-N selection, alert collection, and
// ticket resolution.
package app

import (
	"context"
	"sort"
	"time"

	"github.com/towncrier-app/towncrier/internal/adapters/location"
	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
	"github.com/towncrier-app/towncrier/pkg/metrics"
)

// FetchPath names how a category's event set was obtained, so tests and
// logs can assert which path was taken instead of inferring it from the
// final value.
type FetchPath string

const (
	// PathFetched means the live fetch returned events.
	PathFetched FetchPath = "fetched"
	// PathFellBack means the live fetch was empty or failed and the
	// persisted fallback was substituted.
	PathFellBack FetchPath = "fell_back"
	// PathFailed means both the live fetch and the fallback came back
	// empty.
	PathFailed FetchPath = "failed"
)

// CategoryOutcome records the path one category took through the pipeline.
type CategoryOutcome struct {
	Category category.Category
	Path     FetchPath
}

// RunResult is the terminal output of one pipeline run.
type RunResult struct {
	// Buckets maps each routine category to its curated selection.
	Buckets map[category.Category]*model.CategoryBucket
	// Alerts is the run-wide collection of alert-category events, never
	// scored or truncated.
	Alerts model.AlertCollection
	// AllEvents is the full unfiltered set across routine categories,
	// retained separately from the curated buckets.
	AllEvents []*model.Event
	// Ticketed holds the ticket resolutions of selected events that
	// plausibly require admission.
	Ticketed []*model.TicketResolution
	// Outcomes records the fetch path per category, in processing order.
	Outcomes []CategoryOutcome
}

// eventSource fetches raw events for one category.
type eventSource interface {
	Fetch(ctx context.Context, cat category.Category, lat, lon float64, window config.DateWindow) ([]*model.Event, error)
}

// fallbackProvider supplies persisted placeholder events.
type fallbackProvider interface {
	Provide(ctx context.Context, cat category.Category) []*model.Event
}

// relevanceScorer assigns scores to routine events.
type relevanceScorer interface {
	Score(e *model.Event) float64
}

// ticketResolver resolves ticket requirements for selected events.
type ticketResolver interface {
	Resolve(ctx context.Context, e *model.Event) *model.TicketResolution
}

// outputSink persists run artifacts.
type outputSink interface {
	WriteRaw(ctx context.Context, cat category.Category, evs []*model.Event)
	WriteSelection(ctx context.Context, cat category.Category, evs []*model.Event)
	WriteAlerts(ctx context.Context, alerts model.AlertCollection)
	WriteAllEvents(ctx context.Context, evs []*model.Event)
	WriteTicketed(ctx context.Context, resolutions []*model.TicketResolution)
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline is the single-worker curation pipeline. One category is fully
// fetched, scored, and curated before the next begins; one event's ticket
// resolution completes before the next event's begins.
type Pipeline struct {
	resolver *config.Resolver
	source   eventSource
	fallback fallbackProvider
	scorer   relevanceScorer
	tickets  ticketResolver
	sink     outputSink

	now func() time.Time
	log logger.Logger
}

// New constructs a Pipeline over its collaborators.
func New(resolver *config.Resolver, source eventSource, fb fallbackProvider, scorer relevanceScorer, tickets ticketResolver, sink outputSink, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		source:   source,
		fallback: fb,
		scorer:   scorer,
		tickets:  tickets,
		sink:     sink,
		now:      time.Now,
		log:      logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one curation run for the given place. extraAlerts (e.g.
// weather alerts) are merged into the run's alert collection.
//
// The only returned error is an invalid custom date window with fallback
// disallowed; every other failure degrades to its stage's fallback value
// and the output stays well-formed.
func (p *Pipeline) Run(ctx context.Context, place location.Place, extraAlerts []*model.Event) (*RunResult, error) {
	window, err := p.resolver.DateWindow(p.now())
	if err != nil {
		return nil, err
	}
	p.log.Info(ctx, "resolved date window",
		logger.String("start", window.Start),
		logger.String("end", window.End),
		logger.String("source", string(window.Source)),
	)

	result := &RunResult{
		Buckets: make(map[category.Category]*model.CategoryBucket),
	}
	result.Alerts = append(result.Alerts, extraAlerts...)

	for _, cat := range p.resolver.Categories() {
		if cat.IsAlert() {
			p.collectAlerts(ctx, cat, place, window, result)
			continue
		}
		p.curate(ctx, cat, place, window, result)
	}

	p.resolveTickets(ctx, result)

	p.sink.WriteAllEvents(ctx, result.AllEvents)
	if len(result.Alerts) > 0 {
		p.sink.WriteAlerts(ctx, result.Alerts)
	}
	if len(result.Ticketed) > 0 {
		p.sink.WriteTicketed(ctx, result.Ticketed)
	}

	p.log.Info(ctx, "run complete",
		logger.Int("buckets", len(result.Buckets)),
		logger.Int("alerts", len(result.Alerts)),
		logger.Int("ticketed", len(result.Ticketed)),
	)
	return result, nil
}

// collectAlerts handles the alert branch: results are appended verbatim to
// the run-wide collection, never scored, never truncated, never replaced by
// fallback.
func (p *Pipeline) collectAlerts(ctx context.Context, cat category.Category, place location.Place, window config.DateWindow, result *RunResult) {
	evs, err := p.source.Fetch(ctx, cat, place.Lat, place.Lon, window)
	if err != nil {
		metrics.RecordFetchFailure(cat.String())
		p.log.Warn(ctx, "alert fetch failed",
			logger.String("category", cat.String()),
			logger.Error(err),
		)
		result.Outcomes = append(result.Outcomes, CategoryOutcome{Category: cat, Path: PathFailed})
		return
	}
	metrics.RecordEventsFetched(cat.String(), len(evs))
	metrics.RecordAlertsCollected(len(evs))
	result.Alerts = append(result.Alerts, evs...)
	result.Outcomes = append(result.Outcomes, CategoryOutcome{Category: cat, Path: PathFetched})
}

// curate handles the routine branch: fetch (or fall back), archive the raw
// set, score every event, stable-sort descending, and keep the top of the
// ranking.
func (p *Pipeline) curate(ctx context.Context, cat category.Category, place location.Place, window config.DateWindow, result *RunResult) {
	path := PathFetched

	evs, err := p.source.Fetch(ctx, cat, place.Lat, place.Lon, window)
	if err != nil {
		metrics.RecordFetchFailure(cat.String())
		p.log.Warn(ctx, "fetch failed",
			logger.String("category", cat.String()),
			logger.Error(err),
		)
		evs = nil
	} else {
		metrics.RecordEventsFetched(cat.String(), len(evs))
	}

	if len(evs) == 0 {
		metrics.RecordFallbackUsed(cat.String())
		evs = p.fallback.Provide(ctx, cat)
		path = PathFellBack
		if len(evs) == 0 {
			path = PathFailed
		}
	}

	// The full unscored set is archived and retained separately from the
	// curated selection.
	p.sink.WriteRaw(ctx, cat, evs)
	result.AllEvents = append(result.AllEvents, evs...)

	for _, e := range evs {
		p.scorer.Score(e)
		metrics.RecordEventScored()
	}

	sort.SliceStable(evs, func(i, j int) bool {
		return evs[i].ScoreValue() > evs[j].ScoreValue()
	})
	selected := evs
	if len(selected) > model.MaxBucketSize {
		selected = selected[:model.MaxBucketSize]
	}

	bucket := &model.CategoryBucket{Category: cat, Events: selected}
	result.Buckets[cat] = bucket
	result.Outcomes = append(result.Outcomes, CategoryOutcome{Category: cat, Path: path})
	p.sink.WriteSelection(ctx, cat, selected)
}

// resolveTickets runs ticket resolution for every selected event, attaching
// the outcome to the event record and collecting positive classifications.
func (p *Pipeline) resolveTickets(ctx context.Context, result *RunResult) {
	for _, cat := range p.resolver.Categories() {
		bucket, ok := result.Buckets[cat]
		if !ok {
			continue
		}
		for _, e := range bucket.Events {
			res := p.tickets.Resolve(ctx, e)
			e.TicketResult = res
			if res.NeedsTicket {
				result.Ticketed = append(result.Ticketed, res)
			}
		}
	}
}
