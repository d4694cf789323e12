package eventbus

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/restock/pkg/domain/entities"
	"github.com/vsinha/restock/pkg/domain/events"
)

func TestMulti_FansOutAndSkipsNil(t *testing.T) {
	first := &countingObserver{}
	second := &countingObserver{}
	var count int

	observer := events.Multi(first, nil, second, events.ObserverFunc(func(events.Event) { count++ }))
	observer.Observe(events.NewEvent(events.DemandAnalyzedEvent, "s", nil))

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
	assert.Equal(t, 1, count)
}

func TestOrNop(t *testing.T) {
	assert.NotPanics(t, func() { events.OrNop(nil).Observe(events.NewEvent("x", "y", nil)) })

	store := NewInMemoryEventStore(1)
	assert.Same(t, store, events.OrNop(store))
}

func TestLogObserver_WritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	observer := NewLogObserver(logger)

	observer.Observe(events.NewForecastFailedEvent("run-7", entities.ModelAdvanced, errors.New("cholesky failed")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, events.ForecastFailedEvent, record["event"])
	assert.Equal(t, "run-7", record["stream_id"])
	assert.Equal(t, "ADVANCED", record["model"])
	assert.Equal(t, "cholesky failed", record["error"])
	assert.NotContains(t, record, "version")
}

func TestLogObserver_SubscribedToStore(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	store := NewInMemoryEventStore(0)
	store.Subscribe(NewLogObserver(logger))

	store.Observe(events.NewForecastShortfallEvent("run", 14, 5))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.EqualValues(t, 1, record["version"])
	assert.EqualValues(t, 14, record["lead_time_days"])
	assert.EqualValues(t, 5, record["forecast_days"])
}
