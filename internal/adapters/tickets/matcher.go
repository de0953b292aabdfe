package tickets

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/towncrier-app/towncrier/internal/domain/match"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/internal/domain/ticket"
	"github.com/towncrier-app/towncrier/pkg/logger"
	"github.com/towncrier-app/towncrier/pkg/metrics"
)

// Matcher pacing constants.
const (
	// minCallSpacing is the minimum gap between outbound catalog calls.
	// The caller blocks for the remainder; calls are never dropped.
	minCallSpacing = 200 * time.Millisecond
	// rateLimitBackoff is slept after a 429 before giving up on the call.
	rateLimitBackoff = 60 * time.Second

	defaultSource = "Ticketmaster"
)

// stateAbbrev maps full state names the provider is known to spell out to
// their two-letter codes. Anything else falls back to the first two letters.
var stateAbbrev = map[string]string{
	"georgia": "GA", "texas": "TX", "california": "CA",
	"florida": "FL", "north carolina": "NC", "south carolina": "SC",
	"new york": "NY", "illinois": "IL",
}

// searcher abstracts the catalog client, for tests.
type searcher interface {
	Search(ctx context.Context, q Query) ([]CatalogEvent, error)
}

// MatcherOption applies a configuration option to the Matcher.
type MatcherOption func(*Matcher)

// WithSleep overrides the blocking sleep, for tests.
func WithSleep(sleep func(time.Duration)) MatcherOption {
	return func(m *Matcher) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// WithMatcherClock overrides the time source, for tests.
func WithMatcherClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSourceTag overrides the source tag written into ticket info.
func WithSourceTag(tag string) MatcherOption {
	return func(m *Matcher) {
		if tag != "" {
			m.source = tag
		}
	}
}

// WithMatcherLogger sets a custom logger.
func WithMatcherLogger(log logger.Logger) MatcherOption {
	return func(m *Matcher) {
		if log != nil {
			m.log = log
		}
	}
}

// Matcher resolves ticket availability for events. The match cache and the
// last-call timestamp are instance state, built once per pipeline run and
// discarded with it; the single pipeline worker is the only mutator, so no
// locking is needed.
type Matcher struct {
	client searcher

	// cache maps a query signature to its resolved ticket info. A present
	// nil entry is a cached "no match" and short-circuits the search too.
	cache     map[string]*model.TicketInfo
	lastCall  time.Time
	callCount int

	source string
	now    func() time.Time
	sleep  func(time.Duration)
	log    logger.Logger
}

// NewMatcher constructs a Matcher over the given catalog client.
func NewMatcher(client searcher, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		client: client,
		cache:  make(map[string]*model.TicketInfo),
		source: defaultSource,
		now:    time.Now,
		sleep:  time.Sleep,
		log:    logger.Named("tickets"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CallCount reports how many outbound catalog calls this matcher has made.
func (m *Matcher) CallCount() int { return m.callCount }

// Resolve classifies e and, when a ticket is plausibly required, searches
// the catalog for a matching listing. A true NeedsTicket with nil
// TicketInfo means the search failed or found nothing.
func (m *Matcher) Resolve(ctx context.Context, e *model.Event) *model.TicketResolution {
	needs, reason := ticket.NeedsTicket(e)
	if !needs {
		return &model.TicketResolution{NeedsTicket: false, Reason: reason}
	}

	return &model.TicketResolution{
		NeedsTicket: true,
		TicketInfo:  m.search(ctx, e),
		EventDetails: &model.EventDetails{
			Title:      e.Title,
			Date:       e.LocalDate(),
			Venue:      e.VenueName(),
			Category:   e.Category,
			Attendance: e.PredictedAttendance,
			Rank:       e.Rank,
		},
	}
}

// search runs the cached, rate-spaced catalog lookup for e. Every outcome,
// including "no match", lands in the cache under the query signature.
func (m *Matcher) search(ctx context.Context, e *model.Event) *model.TicketInfo {
	cleanTitle := match.CleanTitle(e.Title)
	city := e.City()
	state := stateCode(e.Region())
	date := e.LocalDate()

	key := cleanTitle + "_" + city + "_" + state + "_" + date
	if info, ok := m.cache[key]; ok {
		m.log.Info(ctx, "using cached result", logger.String("key", key))
		metrics.RecordTicketCacheHit()
		return info
	}

	m.enforceSpacing()

	m.callCount++
	m.lastCall = m.now()
	metrics.RecordTicketLookup()
	m.log.Info(ctx, "searching catalog",
		logger.Int("call", m.callCount),
		logger.String("keyword", cleanTitle),
		logger.String("city", city),
		logger.String("state", state),
	)

	candidates, err := m.client.Search(ctx, Query{
		Keyword:   cleanTitle,
		City:      city,
		StateCode: state,
		Date:      date,
	})

	var info *model.TicketInfo
	switch {
	case errors.Is(err, ErrRateLimited):
		m.log.Warn(ctx, "rate limit hit, backing off", logger.Any("backoff", rateLimitBackoff))
		metrics.RecordRateLimitWait()
		m.sleep(rateLimitBackoff)
	case errors.Is(err, ErrUnauthorized):
		m.log.Error(ctx, "catalog authentication failed")
	case err != nil:
		m.log.Warn(ctx, "catalog search failed", logger.Error(err))
	default:
		info = m.selectBest(ctx, candidates, cleanTitle)
	}

	if info == nil {
		metrics.RecordTicketNoMatch()
	} else {
		metrics.RecordTicketMatch()
	}
	m.cache[key] = info
	return info
}

// enforceSpacing blocks until minCallSpacing has elapsed since the last
// outbound call.
func (m *Matcher) enforceSpacing() {
	if m.lastCall.IsZero() {
		return
	}
	if since := m.now().Sub(m.lastCall); since < minCallSpacing {
		metrics.RecordRateLimitWait()
		m.sleep(minCallSpacing - since)
	}
}

// selectBest picks the candidate with the highest combined similarity,
// provided it clears the acceptance threshold. Ties keep the first
// candidate in catalog order.
func (m *Matcher) selectBest(ctx context.Context, candidates []CatalogEvent, target string) *model.TicketInfo {
	m.log.Info(ctx, "found candidates", logger.Int("count", len(candidates)))

	var best *CatalogEvent
	bestScore := 0.0
	for i := range candidates {
		score := match.Score(target, candidates[i].Name)
		if score > bestScore && score > match.MinScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	if best == nil {
		return nil
	}

	info := &model.TicketInfo{
		TicketURL:  best.URL,
		PriceRange: formatPriceRange(best.PriceRanges),
		Date:       best.Dates.Start.LocalDate,
		Source:     m.source,
	}
	if len(best.Embedded.Venues) > 0 {
		info.Venue = best.Embedded.Venues[0].Name
	}
	return info
}

// formatPriceRange renders "$<min>-$<max> <currency>", or "Price varies"
// when the candidate exposes no price range.
func formatPriceRange(ranges []PriceRange) string {
	if len(ranges) == 0 {
		return "Price varies"
	}
	r := ranges[0]
	return "$" + formatPrice(r.Min) + "-$" + formatPrice(r.Max) + " " + currencyOrDefault(r.Currency)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func currencyOrDefault(cur string) string {
	if cur == "" {
		return "USD"
	}
	return cur
}

// stateCode reduces a region name to a two-letter state code.
func stateCode(state string) string {
	if len(state) < 2 {
		return ""
	}
	if abbr, ok := stateAbbrev[strings.ToLower(state)]; ok {
		return abbr
	}
	return strings.ToUpper(state[:2])
}
