// Package metrics holds the Prometheus implementation of the timetable metrics
// sink together with the HTTP endpoint and the change collector feeding it.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/timetable/core/clash"
	coremetrics "github.com/kilianp07/timetable/core/metrics"
)

// PromSink records timetable activity in Prometheus metrics.
type PromSink struct {
	edits   *prometheus.CounterVec
	checks  prometheus.Counter
	clashes *prometheus.GaugeVec
	exports *prometheus.CounterVec
	filled  prometheus.Gauge
}

// NewPromSink registers timetable metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_edits_total",
			Help: "Total number of applied workspace edits",
		}, []string{"action"}),
		checks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "timetable_clash_checks_total",
			Help: "Total number of clash checks run",
		}),
		clashes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "timetable_findings",
			Help: "Findings reported by the last clash check",
		}, []string{"kind", "severity"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_exports_total",
			Help: "Total number of exports served",
		}, []string{"format"}),
		filled: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timetable_filled_cells",
			Help: "Number of non-empty grid cells",
		}),
	}
	var err error
	if s.edits, err = register(reg, s.edits); err != nil {
		return nil, err
	}
	if s.checks, err = register(reg, s.checks); err != nil {
		return nil, err
	}
	if s.clashes, err = register(reg, s.clashes); err != nil {
		return nil, err
	}
	if s.exports, err = register(reg, s.exports); err != nil {
		return nil, err
	}
	if s.filled, err = register(reg, s.filled); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c is a duplicate.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEdit counts one applied edit.
func (s *PromSink) RecordEdit(action string) error {
	s.edits.WithLabelValues(action).Inc()
	return nil
}

// RecordClashCheck counts the check and replaces the findings gauge.
func (s *PromSink) RecordClashCheck(r clash.Report) error {
	s.checks.Inc()
	s.clashes.Reset()
	for _, f := range r.Clashes {
		s.clashes.WithLabelValues(string(f.Kind), "clash").Inc()
	}
	for _, f := range r.Warnings {
		s.clashes.WithLabelValues(string(f.Kind), "warning").Inc()
	}
	return nil
}

func (s *PromSink) RecordExport(format string) error {
	s.exports.WithLabelValues(format).Inc()
	return nil
}

func (s *PromSink) SetFilledCells(n int) error {
	s.filled.Set(float64(n))
	return nil
}

var _ coremetrics.Sink = (*PromSink)(nil)
