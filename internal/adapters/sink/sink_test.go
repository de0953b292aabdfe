package sink_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towncrier-app/towncrier/internal/adapters/sink"
	"github.com/towncrier-app/towncrier/internal/domain/category"
	"github.com/towncrier-app/towncrier/internal/domain/model"
	"github.com/towncrier-app/towncrier/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func readEvents(t *testing.T, path string) []*model.Event {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var evs []*model.Event
	require.NoError(t, json.Unmarshal(data, &evs))
	return evs
}

func TestWriteRawAndSelection(t *testing.T) {
	dir := t.TempDir()
	s := sink.New(dir)
	ctx := context.Background()

	raw := []*model.Event{
		{ID: "evt-1", Title: "Jazz Night", Category: category.Concerts},
		{ID: "evt-2", Title: "Blues Evening", Category: category.Concerts},
		{ID: "evt-3", Title: "Folk Showcase", Category: category.Concerts},
	}
	s.WriteRaw(ctx, category.Concerts, raw)
	s.WriteSelection(ctx, category.Concerts, raw[:2])

	got := readEvents(t, filepath.Join(dir, "concerts", "raw_events.json"))
	require.Len(t, got, 3)
	assert.Equal(t, "evt-1", got[0].ID)

	got = readEvents(t, filepath.Join(dir, "concerts", "selected_events.json"))
	require.Len(t, got, 2)
}

func TestWriteAlerts(t *testing.T) {
	dir := t.TempDir()
	s := sink.New(dir)

	alerts := model.AlertCollection{
		{ID: "alert-1", Title: "Thunderstorm Alert", Category: category.SevereWeather},
	}
	s.WriteAlerts(context.Background(), alerts)

	data, err := os.ReadFile(filepath.Join(dir, "alerts", "alerts.json"))
	require.NoError(t, err)
	var got model.AlertCollection
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Thunderstorm Alert", got[0].Title)
}

func TestWriteAllEventsAndTicketed(t *testing.T) {
	dir := t.TempDir()
	s := sink.New(dir)
	ctx := context.Background()

	s.WriteAllEvents(ctx, []*model.Event{{ID: "evt-1", Title: "Jazz Night"}})
	s.WriteTicketed(ctx, []*model.TicketResolution{
		{NeedsTicket: true, TicketInfo: &model.TicketInfo{TicketURL: "https://tix.example/jazz"}},
	})

	got := readEvents(t, filepath.Join(dir, "all_events.json"))
	require.Len(t, got, 1)

	data, err := os.ReadFile(filepath.Join(dir, "ticketed_events.json"))
	require.NoError(t, err)
	var resolutions []*model.TicketResolution
	require.NoError(t, json.Unmarshal(data, &resolutions))
	require.Len(t, resolutions, 1)
	assert.Equal(t, "https://tix.example/jazz", resolutions[0].TicketInfo.TicketURL)
}

func TestWriteFailureDoesNotPanic(t *testing.T) {
	s := sink.New(filepath.Join(t.TempDir(), "missing", "\x00bad"))

	assert.NotPanics(t, func() {
		s.WriteAllEvents(context.Background(), []*model.Event{{ID: "evt-1"}})
	})
}
