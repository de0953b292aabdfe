// Package events fetches raw events for one category and geographic point
// from the external events provider.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

// Provider request constants.
const (
	pageSize       = 50
	requestTimeout = 15 * time.Second

	// expandFields requests the sub-objects needed for scoring and entity
	// extraction.
	expandFields = "phq_attendance,place,labels,entities"

	// startLocalLayout parses the provider's zone-less local timestamps.
	startLocalLayout = "2006-01-02T15:04:05"
	// timeStrLayout renders the human-readable time string.
	timeStrLayout = "Monday, January 02 at 03:04 PM"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSortField sets the provider field used for descending sort.
func WithSortField(field string) Option {
	return func(c *Client) {
		if field != "" {
			c.sortField = field
		}
	}
}

// WithRadius sets the query radius, e.g. "50mi".
func WithRadius(radius string) Option {
	return func(c *Client) {
		if radius != "" {
			c.radius = radius
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// Client queries the events provider. One bounded-radius, bounded-window
// request is issued per category.
type Client struct {
	baseURL   string
	token     string
	radius    string
	sortField string
	http      *http.Client
	log       logger.Logger
}

// NewClient constructs a provider client.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		token:     token,
		radius:    "50mi",
		sortField: "rank",
		http:      &http.Client{Timeout: requestTimeout},
		log:       logger.Named("events"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resultsEnvelope is the provider's top-level response shape.
type resultsEnvelope struct {
	Results []*model.Event `json:"results"`
}

// Fetch returns the provider's events for one category around (lat, lon)
// within the date window. Each event is stamped with the request category
// and a human-readable time string.
//
// Any transport, auth, or parse failure yields an empty slice and an error
// for outcome accounting; callers substitute fallback events and continue.
func (c *Client) Fetch(ctx context.Context, cat category.Category, lat, lon float64, window config.DateWindow) ([]*model.Event, error) {
	q := url.Values{}
	q.Set("within", fmt.Sprintf("%s@%s,%s",
		c.radius,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64)))
	q.Set("category", cat.String())
	q.Set("active.gte", window.Start)
	q.Set("active.lte", window.End)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("sort", "-"+c.sortField)
	q.Set("expand", expandFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProviderStatus, resp.StatusCode)
	}

	var envelope resultsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	for _, e := range envelope.Results {
		c.stamp(e, cat)
	}

	c.log.Info(ctx, "fetched events",
		logger.String("category", cat.String()),
		logger.Int("count", len(envelope.Results)),
	)
	return envelope.Results, nil
}

// stamp assigns the request category and derives the human-readable time
// string. The category is assigned exactly once, here, and never changes.
func (c *Client) stamp(e *model.Event, cat category.Category) {
	e.Category = cat
	if e.StartLocal == "" {
		return
	}
	if dt, err := time.Parse(startLocalLayout, e.StartLocal); err == nil {
		e.TimeStr = dt.Format(timeStrLayout)
	} else {
		// Unparseable local starts are kept verbatim.
		e.TimeStr = e.StartLocal
	}
}
