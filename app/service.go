// Package app wires the workspace, its observers and the HTTP surfaces into
// one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apijournal "github.com/kilianp07/timetable/api/journal"
	apiworkspace "github.com/kilianp07/timetable/api/workspace"
	"github.com/kilianp07/timetable/config"
	"github.com/kilianp07/timetable/core/journal"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/model"
	coremon "github.com/kilianp07/timetable/core/monitoring"
	"github.com/kilianp07/timetable/core/timetable"
	"github.com/kilianp07/timetable/infra/logger"
	"github.com/kilianp07/timetable/infra/metrics"
	"github.com/kilianp07/timetable/infra/monitoring"
	"github.com/kilianp07/timetable/infra/mqtt"
	"github.com/kilianp07/timetable/internal/eventbus"
	"github.com/kilianp07/timetable/pkg/export"
	"github.com/kilianp07/timetable/web"
)

// Service owns the workspace and everything observing it.
type Service struct {
	Workspace *timetable.Workspace
	Handler   http.Handler

	cfg      *config.Config
	bus      *eventbus.Bus[timetable.Change]
	store    journal.Store
	sink     coremetrics.Sink
	notifier *mqtt.Notifier
	mon      coremon.Monitor
	log      logger.Logger

	journalSub <-chan timetable.Change
	metricsSub <-chan timetable.Change
	mqttSub    <-chan timetable.Change

	closeOnce sync.Once
}

// Option customises service construction.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	log        logger.Logger
	monitor    coremon.Monitor
}

// WithRegisterer registers Prometheus collectors on reg instead of the
// default registerer.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option { return func(o *options) { o.log = l } }

// WithMonitor replaces the monitor built from the sentry section.
func WithMonitor(m coremon.Monitor) Option { return func(o *options) { o.monitor = m } }

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, fn := range opts {
		fn(&o)
	}
	logg := o.log
	if logg == nil {
		logg = logger.New("service")
	}
	mon := o.monitor
	if mon == nil {
		m, err := monitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		mon = m
	}

	bus := eventbus.New[timetable.Change](eventbus.DefaultBuffer)
	ws := timetable.New(cfg.School.Settings(), bus)
	if path := cfg.School.SettingsFile; path != "" {
		if err := loadSettings(ws, path); err != nil {
			return nil, err
		}
	}

	store, err := journal.Open(cfg.Journal.Store())
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	var sink coremetrics.Sink = coremetrics.NopSink{}
	if cfg.Metrics.PrometheusEnabled {
		prom, err := metrics.NewPromSinkWithRegistry(cfg.Metrics, o.registerer)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = prom
	}

	var notifier *mqtt.Notifier
	if cfg.MQTT.Enabled {
		notifier, err = mqtt.NewNotifier(cfg.MQTT, logger.New("mqtt"), mon)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
	}

	s := &Service{
		Workspace:  ws,
		cfg:        cfg,
		bus:        bus,
		store:      store,
		sink:       sink,
		notifier:   notifier,
		mon:        mon,
		log:        logg,
		journalSub: bus.Subscribe(),
		metricsSub: bus.Subscribe(),
	}
	if notifier != nil {
		s.mqttSub = bus.Subscribe()
	}

	ui, err := web.New(ws,
		web.WithAutoFill(cfg.AutoFill),
		web.WithSink(sink),
		web.WithMonitor(mon),
		web.WithLogger(logger.New("web")),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	mux := http.NewServeMux()
	ui.Register(mux)
	apiworkspace.New(ws,
		apiworkspace.WithAutoFill(cfg.AutoFill),
		apiworkspace.WithSink(sink),
		apiworkspace.WithMonitor(mon),
		apiworkspace.WithLogger(logger.New("api")),
	).Register(mux)
	mux.Handle("GET /api/journal", apijournal.NewHandler(store, cfg.Journal.Token))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	s.Handler = s.middleware(mux)
	return s, nil
}

func loadSettings(ws *timetable.Workspace, path string) error {
	doc, err := ReadSettings(path)
	if err != nil {
		return err
	}
	if err := ws.Replace(doc); err != nil {
		return fmt.Errorf("settings file %s: %w", path, err)
	}
	return nil
}

// ReadSettings decodes a JSON or YAML settings document, choosing the format
// from the file extension, and validates it.
func ReadSettings(path string) (model.Settings, error) {
	f, err := export.ParseFormat(filepath.Ext(path))
	if err != nil || (f != export.FormatJSON && f != export.FormatYAML) {
		return model.Settings{}, fmt.Errorf("settings file %s: expected .json, .yaml or .yml", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return model.Settings{}, fmt.Errorf("settings file: %w", err)
	}
	defer func() { _ = file.Close() }()
	doc, err := export.Decode(file, f)
	if err != nil {
		return model.Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return timetable.Validate(doc)
}

// middleware recovers panics into 500 responses and logs each request.
func (s *Service) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if v := recover(); v != nil {
				s.mon.CaptureException(coremon.PanicError{Value: v}, map[string]string{"path": r.URL.Path})
				s.log.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, v)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
		s.log.Debugf("%s %s in %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// Run starts the observers and the HTTP servers and blocks until the context
// is cancelled or the HTTP listener fails, in which case the listener error is
// returned.
func (s *Service) Run(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	writer := journal.NewWriter(s.store, logger.New("journal"))
	start(func() { writer.Run(ctx, s.journalSub) })
	start(func() { metrics.RunChangeCollector(ctx, s.metricsSub, s.sink) })
	if s.notifier != nil {
		start(func() { s.notifier.Run(ctx, s.mqttSub) })
	}
	if s.cfg.Metrics.PrometheusEnabled {
		addr := ":" + strconv.Itoa(s.cfg.Metrics.PrometheusPort)
		start(func() {
			if err := metrics.StartPromServer(ctx, addr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}

	srv := &http.Server{
		Addr:              s.cfg.Server.Address,
		Handler:           s.Handler,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout(),
		ReadTimeout:       s.cfg.Server.ReadTimeout(),
		WriteTimeout:      s.cfg.Server.WriteTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("timetable service listening", map[string]any{
			"address": srv.Addr,
			"school":  s.Workspace.Snapshot().SchoolName,
			"journal": s.cfg.Journal.Backend,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Warnf("http shutdown: %v", err)
	}
	stop()
	s.bus.Close()
	wg.Wait()
	return runErr
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.bus.Close()
		if s.notifier != nil {
			s.notifier.Close()
		}
		s.mon.Flush(2 * time.Second)
		err = s.store.Close()
	})
	return err
}
