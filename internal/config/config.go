// Package config defines pipeline configuration structures, loading, and the
// resolver that turns raw settings into validated run parameters.
//
// Conventions:
//   - Provide New() initializer to build a Config with defaults.
//   - External errors must be wrapped via this package's error helpers.
//   - Resolution of categories, date windows, and weights never fails the run;
//     every malformed setting degrades to a built-in default.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes Prometheus metrics for the duration of the run
	// when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	Events   EventsAPI  `koanf:"events_api"`
	Tickets  TicketsAPI `koanf:"tickets_api"`
	Weather  WeatherAPI `koanf:"weather_api"`
	Location Location   `koanf:"location"`

	TimeFrame TimeFrame `koanf:"time_frame"`
	Selection Selection `koanf:"event_selection"`

	// EventSort names the provider field used for descending sort.
	EventSort string `koanf:"event_sort"`

	// OutputDir is the root for curated-output documents.
	OutputDir string `koanf:"output_dir"`

	// FallbackDir is the root of the persisted fallback-event store.
	FallbackDir string `koanf:"fallback_dir"`
}

// EventsAPI configures the events provider.
type EventsAPI struct {
	BaseURL string `koanf:"base_url"`
	Token   string `koanf:"token"`

	// UseAllCategories selects the full category taxonomy.
	UseAllCategories bool `koanf:"use_all_categories"`

	// Categories is a comma-separated explicit category list, consulted
	// when UseAllCategories is false.
	Categories string `koanf:"categories"`
}

// TicketsAPI configures the ticket-catalog provider.
type TicketsAPI struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// WeatherAPI configures the weather-alert provider.
type WeatherAPI struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// Location configures geographic scoping.
type Location struct {
	// ForceDefault skips live location detection.
	ForceDefault bool    `koanf:"force_default"`
	DefaultLat   float64 `koanf:"default_lat"`
	DefaultLon   float64 `koanf:"default_lon"`
	DefaultCity  string  `koanf:"default_city"`
	DefaultState string  `koanf:"default_state"`

	// Radius is the provider query radius, e.g. "50mi".
	Radius string `koanf:"radius"`
}

// TimeFrame configures the date window policy.
type TimeFrame struct {
	Enabled           bool   `koanf:"enabled"`
	ForceCustom       bool   `koanf:"force_custom"`
	StartDate         string `koanf:"start_date"`
	EndDate           string `koanf:"end_date"`
	FallbackToDefault bool   `koanf:"fallback_to_default"`
}

// Selection configures scoring weights and per-category boosts.
type Selection struct {
	Weights        Weights            `koanf:"weights"`
	CategoryBoosts map[string]float64 `koanf:"category_boosts"`
}

// Weights are the relevance-scoring term weights.
type Weights struct {
	Rank       float64 `koanf:"rank"`
	Attendance float64 `koanf:"attendance"`
	Urgency    float64 `koanf:"urgency"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Events: EventsAPI{
			BaseURL: "https://api.predicthq.com/v1/events",
		},
		Tickets: TicketsAPI{
			BaseURL: "https://app.ticketmaster.com/discovery/v2/events.json",
		},
		Weather: WeatherAPI{
			BaseURL: "https://api.tomorrow.io/v4/weather/forecast",
		},
		Location: Location{
			ForceDefault: true,
			DefaultLat:   34.0522,
			DefaultLon:   -118.2437,
			DefaultCity:  "Los Angeles",
			DefaultState: "CA",
			Radius:       "50mi",
		},
		TimeFrame: TimeFrame{
			FallbackToDefault: true,
		},
		Selection: Selection{
			Weights: Weights{Rank: 0.6, Attendance: 0.3, Urgency: 0.4},
			CategoryBoosts: map[string]float64{
				"concerts":  1.3,
				"festivals": 1.2,
				"sports":    1.1,
			},
		},
		EventSort:   "rank",
		OutputDir:   "events_data",
		FallbackDir: "fallback_events",
	}
}
