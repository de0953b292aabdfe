// Package location resolves the geographic point and city/state the
// pipeline scopes its queries to. It is a boundary wrapper: accuracy is the
// external service's problem, and every failure degrades to the configured
// defaults.
package location

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

const (
	defaultLookupURL = "https://ipapi.co/json/"
	lookupTimeout    = 10 * time.Second
)

// Place is a resolved location.
type Place struct {
	City  string
	State string
	Lat   float64
	Lon   float64
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) {
		if hc != nil {
			r.http = hc
		}
	}
}

// WithLookupURL overrides the IP-geolocation endpoint.
func WithLookupURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.lookupURL = u
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// Resolver resolves the run's location from config or IP geolocation.
type Resolver struct {
	cfg       config.Location
	lookupURL string
	http      *http.Client
	log       logger.Logger
}

// NewResolver creates a Resolver for the given location config.
func NewResolver(cfg config.Location, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:       cfg,
		lookupURL: defaultLookupURL,
		http:      &http.Client{Timeout: lookupTimeout},
		log:       logger.Named("location"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type lookupResponse struct {
	City       string  `json:"city"`
	RegionCode string  `json:"region_code"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// Resolve returns the pipeline's location. With force_default set (or on
// any lookup failure) the configured defaults are used.
func (r *Resolver) Resolve(ctx context.Context) Place {
	if r.cfg.ForceDefault {
		r.log.Info(ctx, "using default location from config")
		return r.defaults()
	}

	place, err := r.lookup(ctx)
	if err != nil {
		r.log.Warn(ctx, "location detection failed, using defaults", logger.Error(err))
		return r.defaults()
	}
	r.log.Info(ctx, "detected location",
		logger.String("city", place.City),
		logger.String("state", place.State),
	)
	return place
}

func (r *Resolver) lookup(ctx context.Context) (Place, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL, nil)
	if err != nil {
		return Place{}, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, ErrLookupStatus
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Place{}, err
	}
	if body.City == "" || (body.Latitude == 0 && body.Longitude == 0) {
		return Place{}, ErrLookupEmpty
	}
	return Place{
		City:  body.City,
		State: body.RegionCode,
		Lat:   body.Latitude,
		Lon:   body.Longitude,
	}, nil
}

func (r *Resolver) defaults() Place {
	return Place{
		City:  r.cfg.DefaultCity,
		State: r.cfg.DefaultState,
		Lat:   r.cfg.DefaultLat,
		Lon:   r.cfg.DefaultLon,
	}
}
