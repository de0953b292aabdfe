// Package sink persists pipeline output as structured JSON documents for
// downstream narrative and audio generation to consume.
package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
	"github.com/towncrier-app/towncrier/pkg/metrics"
)

// Output document names.
const (
	rawEventsFile      = "raw_events.json"
	selectedEventsFile = "selected_events.json"
	alertsDirName      = "alerts"
	alertsFile         = "alerts.json"
	allEventsFile      = "all_events.json"
	ticketedEventsFile = "ticketed_events.json"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Option applies a configuration option to the Sink.
type Option func(*Sink)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Sink) {
		if log != nil {
			s.log = log
		}
	}
}

// Sink writes curated-output documents under a root directory. Every write
// failure is logged and counted, never propagated: losing a persisted
// artifact does not affect the in-memory state of the current run.
type Sink struct {
	dir string
	log logger.Logger
}

// New creates a Sink rooted at dir.
func New(dir string, opts ...Option) *Sink {
	s := &Sink{
		dir: dir,
		log: logger.Named("sink"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteRaw persists the full unscored fetch result for one category.
func (s *Sink) WriteRaw(ctx context.Context, cat category.Category, evs []*model.Event) {
	s.write(ctx, filepath.Join(s.dir, cat.String(), rawEventsFile), evs)
}

// WriteSelection persists the curated top-N selection for one category.
func (s *Sink) WriteSelection(ctx context.Context, cat category.Category, evs []*model.Event) {
	s.write(ctx, filepath.Join(s.dir, cat.String(), selectedEventsFile), evs)
}

// WriteAlerts persists the run-wide alert collection.
func (s *Sink) WriteAlerts(ctx context.Context, alerts model.AlertCollection) {
	s.write(ctx, filepath.Join(s.dir, alertsDirName, alertsFile), alerts)
}

// WriteAllEvents persists the combined unfiltered event set across all
// routine categories.
func (s *Sink) WriteAllEvents(ctx context.Context, evs []*model.Event) {
	s.write(ctx, filepath.Join(s.dir, allEventsFile), evs)
}

// WriteTicketed persists the ticket resolutions for selected events.
func (s *Sink) WriteTicketed(ctx context.Context, resolutions []*model.TicketResolution) {
	s.write(ctx, filepath.Join(s.dir, ticketedEventsFile), resolutions)
}

func (s *Sink) write(ctx context.Context, path string, doc any) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		s.fail(ctx, path, err)
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.fail(ctx, path, err)
		return
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		s.fail(ctx, path, err)
		return
	}
	s.log.Debug(ctx, "wrote output document", logger.String("path", path))
}

func (s *Sink) fail(ctx context.Context, path string, err error) {
	metrics.RecordSinkWriteFailure()
	s.log.Error(ctx, "output write failed",
		logger.String("path", path),
		logger.Error(err),
	)
}
