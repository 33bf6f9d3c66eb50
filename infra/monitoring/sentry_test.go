package monitoring

import (
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/config"
	coremon "github.com/kilianp07/timetable/core/monitoring"
)

func TestNewSentryMonitorWithoutDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, coremon.NopMonitor{}, m)
}

func TestNewSentryMonitorInvalidDSN(t *testing.T) {
	_, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"})
	assert.Error(t, err)
}

func TestNewSentryMonitorValidDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1", Environment: "test"})
	require.NoError(t, err)
	_, ok := m.(*sentryMonitor)
	assert.True(t, ok)
	assert.NotPanics(t, func() { m.CaptureException(nil, nil) })
}

func TestSentryMonitorTagsEvents(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	m, err := newSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1"}, func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	m.CaptureException(errors.New("export failed"), map[string]string{"path": "/api/export/xlsx"})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "timetable", events[0].Tags["service"])
	assert.Equal(t, "/api/export/xlsx", events[0].Tags["path"])
}

func TestSentryMonitorRecoverRepanics(t *testing.T) {
	m, err := newSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1"}, func(*sentry.Event, *sentry.EventHint) *sentry.Event {
		return nil
	})
	require.NoError(t, err)
	assert.PanicsWithValue(t, "boom", func() {
		defer m.Recover()
		panic("boom")
	})
}
