package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/journal"
	"github.com/kilianp07/timetable/core/model"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/pkg/export"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.SetDefaults()
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) (*Service, *coremon.Recorder) {
	t.Helper()
	rec := &coremon.Recorder{}
	svc, err := New(cfg,
		WithMonitor(rec),
		WithLogger(logger.NopLogger{}),
		WithRegisterer(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, rec
}

func TestServiceRoutes(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/settings", http.StatusOK},
		{http.MethodGet, "/api/grid", http.StatusConflict},
		{http.MethodPost, "/api/generate", http.StatusOK},
		{http.MethodGet, "/api/grid", http.StatusOK},
		{http.MethodGet, "/api/journal", http.StatusOK},
		{http.MethodGet, "/settings", http.StatusOK},
	}
	for _, c := range cases {
		rr := httptest.NewRecorder()
		svc.Handler.ServeHTTP(rr, httptest.NewRequest(c.method, c.path, nil))
		assert.Equal(t, c.status, rr.Code, "%s %s", c.method, c.path)
	}
}

func TestServiceJournalToken(t *testing.T) {
	cfg := testConfig()
	cfg.Journal.Token = "secret"
	svc, _ := newTestService(t, cfg)

	rr := httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/journal", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/journal", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServiceLoadsSettingsFile(t *testing.T) {
	s := model.DefaultSettings()
	s.SchoolName = "Hilltop Academy"
	s.Days = []string{"Monday", "Tuesday"}
	path := filepath.Join(t.TempDir(), "school.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, export.WriteJSON(f, s))
	require.NoError(t, f.Close())

	cfg := testConfig()
	cfg.School.SettingsFile = path
	svc, _ := newTestService(t, cfg)

	snap := svc.Workspace.Snapshot()
	assert.Equal(t, "Hilltop Academy", snap.SchoolName)
	assert.Equal(t, []string{"Monday", "Tuesday"}, snap.Days)
}

func TestReadSettingsRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "school.csv")
	require.NoError(t, os.WriteFile(path, []byte("Days\n"), 0o600))
	_, err := ReadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected .json")
}

func TestServiceRecoversPanics(t *testing.T) {
	svc, rec := newTestService(t, testConfig())
	h := svc.middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "panic: boom", events[0].Err.Error())
	assert.Equal(t, "/x", events[0].Tags["path"])
}

func TestServiceRunJournalsEdits(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.NoError(t, svc.Workspace.SetSchoolName("Riverside High"))

	assert.Eventually(t, func() bool {
		recs, err := svc.store.Query(context.Background(), journal.Query{Action: "school_name"})
		return err == nil && len(recs) == 1 && recs[0].Value == "Riverside High"
	}, 2*time.Second, 10*time.Millisecond)

	rr := httptest.NewRecorder()
	svc.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/journal?action=school_name", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var recs []journal.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Riverside High", recs[0].Value)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestServiceRunReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()

	cfg := testConfig()
	cfg.Server.Address = busy.Addr().String()
	cfg.Metrics.PrometheusEnabled = true
	cfg.Metrics.PrometheusPort = freePort(t)
	svc, _ := newTestService(t, cfg)

	done := make(chan error, 1)
	go func() { done <- svc.Run(context.Background()) }()
	select {
	case err := <-done:
		require.Error(t, err)
		var opErr *net.OpError
		assert.ErrorAs(t, err, &opErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the listener failed")
	}
}

func TestNewRejectsUnknownJournalBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Journal.Backend = "postgres"
	_, err := New(cfg, WithMonitor(coremon.NopMonitor{}), WithLogger(logger.NopLogger{}))
	require.Error(t, err)
}
