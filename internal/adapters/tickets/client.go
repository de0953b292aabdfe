// Package tickets resolves whether selected events have a purchasable
// listing in the external ticket catalog, fuzzy-matching search results back
// to the source event.
package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Catalog request constants.
const (
	searchPageSize = 10
	searchSort     = "relevance,desc"
	searchTimeout  = 10 * time.Second
)

// Query is one catalog search request.
type Query struct {
	Keyword   string
	City      string
	StateCode string
	// Date bounds the search to one calendar day ("2006-01-02") when set.
	Date string
}

// CatalogEvent is one candidate returned by the catalog search.
type CatalogEvent struct {
	Name        string       `json:"name"`
	URL         string       `json:"url"`
	PriceRanges []PriceRange `json:"priceRanges"`
	Dates       EventDates   `json:"dates"`
	Embedded    Embedded     `json:"_embedded"`
}

// PriceRange is the catalog's min/max admission price.
type PriceRange struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
}

// EventDates carries the candidate's localized start date.
type EventDates struct {
	Start struct {
		LocalDate string `json:"localDate"`
	} `json:"start"`
}

// Embedded carries the candidate's venue list.
type Embedded struct {
	Venues []Venue `json:"venues"`
}

// Venue is a catalog venue record.
type Venue struct {
	Name string `json:"name"`
}

type searchEnvelope struct {
	Embedded struct {
		Events []CatalogEvent `json:"events"`
	} `json:"_embedded"`
}

// Client issues search requests against the ticket-catalog API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient constructs a catalog client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: searchTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs one catalog query and returns the candidate list. Non-200
// statuses map onto sentinel errors so the matcher can choose its recovery:
// ErrRateLimited for 429, ErrUnauthorized for 401, ErrCatalogStatus
// otherwise.
func (c *Client) Search(ctx context.Context, q Query) ([]CatalogEvent, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("keyword", q.Keyword)
	params.Set("size", strconv.Itoa(searchPageSize))
	params.Set("sort", searchSort)
	if q.City != "" {
		params.Set("city", q.City)
	}
	if q.StateCode != "" {
		params.Set("stateCode", q.StateCode)
	}
	if q.Date != "" {
		params.Set("startDateTime", q.Date+"T00:00:00Z")
		params.Set("endDateTime", q.Date+"T23:59:59Z")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %d", ErrCatalogStatus, resp.StatusCode)
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	return envelope.Embedded.Events, nil
}
