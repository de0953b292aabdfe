// Package weather polls the forecast provider for conditions worth an
// alert and renders them as severe-weather events for the run's alert
// collection. It is a boundary wrapper with no decision logic beyond the
// fixed alerting thresholds.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

// Alerting thresholds over the forecast window.
const (
	forecastDays = 3

	// stormWeatherCode is the provider code floor for rain and storm
	// conditions.
	stormWeatherCode = 2000
	stormPrecipProb  = 30.0
	heatTempF        = 85.0

	requestTimeout = 10 * time.Second
)

// Option applies a configuration option to the Poller.
type Option func(*Poller)

// WithHTTPClient overrides the HTTP client, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Poller) {
		if hc != nil {
			p.http = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// Poller fetches daily forecasts and derives alert events from them. Seen
// alert days are tracked per instance so one run never emits the same alert
// twice.
type Poller struct {
	baseURL string
	apiKey  string
	http    *http.Client
	seen    map[string]bool
	log     logger.Logger
}

// NewPoller constructs a forecast poller.
func NewPoller(baseURL, apiKey string, opts ...Option) *Poller {
	p := &Poller{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
		seen:    make(map[string]bool),
		log:     logger.Named("weather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type forecastResponse struct {
	Timelines struct {
		Daily []forecastDay `json:"daily"`
	} `json:"timelines"`
}

type forecastDay struct {
	Time   string `json:"time"`
	Values struct {
		WeatherCodeMax              int     `json:"weatherCodeMax"`
		TemperatureMax              float64 `json:"temperatureMax"`
		PrecipitationProbabilityMax float64 `json:"precipitationProbabilityMax"`
	} `json:"values"`
}

// Alerts fetches the forecast for (lat, lon) and returns alert events for
// storm and heat conditions over the next few days. Any failure yields an
// empty slice; weather alerts are additive, never load-bearing.
func (p *Poller) Alerts(ctx context.Context, lat, lon float64) []*model.Event {
	data, err := p.fetch(ctx, lat, lon)
	if err != nil {
		p.log.Warn(ctx, "forecast fetch failed", logger.Error(err))
		return nil
	}

	days := data.Timelines.Daily
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}

	var alerts []*model.Event
	for _, day := range days {
		v := day.Values
		if v.WeatherCodeMax >= stormWeatherCode && v.PrecipitationProbabilityMax > stormPrecipProb {
			if a := p.alert("storm-"+day.Time,
				"Thunderstorm Alert",
				fmt.Sprintf("Storms expected with %.0f%% precipitation probability", v.PrecipitationProbabilityMax),
				day.Time,
			); a != nil {
				alerts = append(alerts, a)
			}
		}
		if v.TemperatureMax > heatTempF {
			if a := p.alert("heat-"+day.Time,
				"Heat Advisory",
				fmt.Sprintf("High temperatures expected up to %.0f°F", v.TemperatureMax),
				day.Time,
			); a != nil {
				alerts = append(alerts, a)
			}
		}
	}
	return alerts
}

func (p *Poller) fetch(ctx context.Context, lat, lon float64) (*forecastResponse, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", lat, lon))
	q.Set("apikey", p.apiKey)
	q.Set("fields", "weatherCodeMax,temperatureMax,precipitationProbabilityMax")
	q.Set("timesteps", "1d")
	q.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast provider returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

// alert builds one deduped severe-weather event, or nil when the id was
// already emitted by this poller.
func (p *Poller) alert(id, title, description, start string) *model.Event {
	if p.seen[id] {
		return nil
	}
	p.seen[id] = true
	return &model.Event{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category.SevereWeather,
		StartLocal:  start,
		TimeStr:     start,
	}
}
