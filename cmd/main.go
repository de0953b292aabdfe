package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/towncrier-app/towncrier/internal/adapters/events"
	"github.com/towncrier-app/towncrier/internal/adapters/fallback"
	"github.com/towncrier-app/towncrier/internal/adapters/location"
	"github.com/towncrier-app/towncrier/internal/adapters/sink"
	"github.com/towncrier-app/towncrier/internal/adapters/tickets"
	"github.com/towncrier-app/towncrier/internal/adapters/weather"
	"github.com/towncrier-app/towncrier/internal/app"
	"github.com/towncrier-app/towncrier/internal/config"
	"github.com/towncrier-app/towncrier/internal/domain/scoring"
	"github.com/towncrier-app/towncrier/pkg/logger"
	"github.com/towncrier-app/towncrier/pkg/metrics"
)

const metricsReadHeaderTimeout = 5 * time.Second

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	log.Info(ctx, "starting community events curation run")

	resolver := config.NewResolver(cfg)
	params := resolver.ScoringParams()

	place := location.NewResolver(cfg.Location).Resolve(ctx)
	log.Info(ctx, "location resolved",
		logger.String("city", place.City),
		logger.String("state", place.State),
	)

	source := events.NewClient(cfg.Events.BaseURL, cfg.Events.Token,
		events.WithSortField(cfg.EventSort),
		events.WithRadius(cfg.Location.Radius),
	)
	fallbackStore := fallback.NewStore(cfg.FallbackDir)
	scorer := scoring.New(
		scoring.WithWeights(params.Weights),
		scoring.WithBoosts(params.Boosts),
	)
	matcher := tickets.NewMatcher(tickets.NewClient(cfg.Tickets.BaseURL, cfg.Tickets.APIKey))
	out := sink.New(cfg.OutputDir)

	// Weather alerts are additive; a failed poll contributes nothing.
	weatherAlerts := weather.NewPoller(cfg.Weather.BaseURL, cfg.Weather.APIKey).
		Alerts(ctx, place.Lat, place.Lon)
	if len(weatherAlerts) > 0 {
		log.Info(ctx, "added weather alerts", logger.Int("count", len(weatherAlerts)))
	}

	pipeline := app.New(resolver, source, fallbackStore, scorer, matcher, out)
	result, err := pipeline.Run(ctx, place, weatherAlerts)
	if err != nil {
		log.Error(ctx, "run aborted", logger.Error(err))
		os.Exit(1)
	}

	log.Info(ctx, "run finished",
		logger.Int("categories", len(result.Buckets)),
		logger.Int("alerts", len(result.Alerts)),
		logger.Int("ticketed", len(result.Ticketed)),
		logger.Int("catalog_calls", matcher.CallCount()),
	)
}

// serveMetrics exposes the Prometheus registry for scraping while the run
// is in flight.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics server failed", logger.Error(err))
	}
}
