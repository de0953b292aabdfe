package location_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/towncrier-app/towncrier/internal/adapters/location"
	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

const lookupURL = "https://geo.example.com/json/"

func init() {
	_ = logger.Init()
}

func defaultsConfig(force bool) config.Location {
	return config.Location{
		ForceDefault: force,
		DefaultCity:  "Los Angeles",
		DefaultState: "CA",
		DefaultLat:   34.0522,
		DefaultLon:   -118.2437,
	}
}

func newResolver(cfg config.Location) (*location.Resolver, *httpmock.MockTransport) {
	transport := httpmock.NewMockTransport()
	hc := &http.Client{Transport: transport}
	return location.NewResolver(cfg,
		location.WithHTTPClient(hc),
		location.WithLookupURL(lookupURL),
	), transport
}

func TestResolve_Detected(t *testing.T) {
	resolver, transport := newResolver(defaultsConfig(false))
	transport.RegisterResponder("GET", lookupURL,
		httpmock.NewStringResponder(200, `{
			"city": "Atlanta",
			"region_code": "GA",
			"latitude": 33.749,
			"longitude": -84.388
		}`))

	place := resolver.Resolve(context.Background())

	assert.Equal(t, "Atlanta", place.City)
	assert.Equal(t, "GA", place.State)
	assert.Equal(t, 33.749, place.Lat)
	assert.Equal(t, -84.388, place.Lon)
}

func TestResolve_ForceDefaultSkipsLookup(t *testing.T) {
	resolver, transport := newResolver(defaultsConfig(true))

	place := resolver.Resolve(context.Background())

	assert.Equal(t, "Los Angeles", place.City)
	assert.Equal(t, "CA", place.State)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestResolve_FailureFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"transport failure", httpmock.NewErrorResponder(errors.New("connection refused"))},
		{"error status", httpmock.NewStringResponder(503, `{}`)},
		{"empty body", httpmock.NewStringResponder(200, `{}`)},
		{"missing coordinates", httpmock.NewStringResponder(200, `{"city": "Atlanta"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, transport := newResolver(defaultsConfig(false))
			transport.RegisterResponder("GET", lookupURL, tt.responder)

			place := resolver.Resolve(context.Background())

			assert.Equal(t, "Los Angeles", place.City)
			assert.Equal(t, 34.0522, place.Lat)
		})
	}
}
