// Package fallback supplies synthetic placeholder events for categories
// whose live fetch came back empty, persisted so repeated empty fetches are
// stable across runs.
package fallback

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

const (
	recordFile = "fallback.json"
	dirPerm    = 0o755
	filePerm   = 0o644

	startLocalLayout = "2006-01-02T15:04:05"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store is a durable read-or-create store of per-category fallback events,
// one record per category under <dir>/<category>/fallback.json.
type Store struct {
	dir string
	now func() time.Time
	log logger.Logger
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir: dir,
		now: time.Now,
		log: logger.Named("fallback"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provide returns the persisted fallback events for cat, synthesizing and
// persisting a single placeholder event dated tomorrow when no record
// exists yet. Creation is idempotent: successive calls return the same
// event. A persistence failure degrades to an empty slice and is logged,
// never propagated.
func (s *Store) Provide(ctx context.Context, cat category.Category) []*model.Event {
	path := filepath.Join(s.dir, cat.String(), recordFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.create(path, cat); err != nil {
			s.log.Error(ctx, "fallback record creation failed",
				logger.String("category", cat.String()),
				logger.Error(err),
			)
			return nil
		}
		s.log.Warn(ctx, "created fallback events",
			logger.String("category", cat.String()),
			logger.String("path", path),
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Error(ctx, "fallback record load failed",
			logger.String("category", cat.String()),
			logger.Error(err),
		)
		return nil
	}

	var evs []*model.Event
	if err := json.Unmarshal(data, &evs); err != nil {
		s.log.Error(ctx, "fallback record decode failed",
			logger.String("category", cat.String()),
			logger.Error(err),
		)
		return nil
	}

	s.log.Info(ctx, "using fallback events",
		logger.String("category", cat.String()),
		logger.Int("count", len(evs)),
	)
	return evs
}

// Refresh deletes the persisted record for cat so the next Provide
// synthesizes a fresh placeholder. This is the escape hatch for categories
// pinned to a stale fallback by a transient provider outage.
func (s *Store) Refresh(ctx context.Context, cat category.Category) error {
	path := filepath.Join(s.dir, cat.String(), recordFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.log.Info(ctx, "fallback record refreshed", logger.String("category", cat.String()))
	return nil
}

func (s *Store) create(path string, cat category.Category) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}

	tomorrow := s.now().UTC().Add(24 * time.Hour)
	evs := []*model.Event{{
		ID:          uuid.NewString(),
		Title:       "Local " + cat.Title() + " Event",
		Description: "Community gathering",
		Category:    cat,
		StartLocal:  tomorrow.Format(startLocalLayout),
		TimeStr:     "Tomorrow",
		Geo: &model.Geo{
			Address: model.Address{FormattedAddress: "City Center"},
		},
	}}

	data, err := json.MarshalIndent(evs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePerm)
}
