// Package metrics defines the sink used to observe timetable activity. Sinks
// record workspace edits, clash checks and exports; PromSink in infra/metrics
// is the Prometheus implementation and NewMultiSink fans out to several sinks.
package metrics

import "github.com/kilianp07/timetable/core/clash"

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool `json:"prometheus_enabled"`
	PrometheusPort    int  `json:"prometheus_port"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == 0 {
		c.PrometheusPort = 9100
	}
}

// Sink records timetable activity for observability purposes.
type Sink interface {
	RecordEdit(action string) error
	RecordClashCheck(r clash.Report) error
	RecordExport(format string) error
	SetFilledCells(n int) error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordEdit(string) error             { return nil }
func (NopSink) RecordClashCheck(clash.Report) error { return nil }
func (NopSink) RecordExport(string) error           { return nil }
func (NopSink) SetFilledCells(int) error            { return nil }

// MultiSink forwards to multiple sinks, returning the first error encountered.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) each(f func(Sink) error) error {
	for _, s := range m.Sinks {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordEdit(action string) error {
	return m.each(func(s Sink) error { return s.RecordEdit(action) })
}

func (m *MultiSink) RecordClashCheck(r clash.Report) error {
	return m.each(func(s Sink) error { return s.RecordClashCheck(r) })
}

func (m *MultiSink) RecordExport(format string) error {
	return m.each(func(s Sink) error { return s.RecordExport(format) })
}

func (m *MultiSink) SetFilledCells(n int) error {
	return m.each(func(s Sink) error { return s.SetFilledCells(n) })
}
