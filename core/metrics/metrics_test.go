package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/timetable/core/clash"
)

type countingSink struct {
	edits, checks, exports, filled int
	err                            error
}

func (c *countingSink) RecordEdit(string) error             { c.edits++; return c.err }
func (c *countingSink) RecordClashCheck(clash.Report) error { c.checks++; return c.err }
func (c *countingSink) RecordExport(string) error           { c.exports++; return c.err }
func (c *countingSink) SetFilledCells(n int) error          { c.filled = n; return c.err }

func TestMultiSinkForwards(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiSink(a, b, NopSink{})
	assert.NoError(t, m.RecordEdit("set_cell"))
	assert.NoError(t, m.RecordClashCheck(clash.Report{}))
	assert.NoError(t, m.RecordExport("csv"))
	assert.NoError(t, m.SetFilledCells(7))
	for _, s := range []*countingSink{a, b} {
		assert.Equal(t, 1, s.edits)
		assert.Equal(t, 1, s.checks)
		assert.Equal(t, 1, s.exports)
		assert.Equal(t, 7, s.filled)
	}
}

func TestMultiSinkStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	a, b := &countingSink{err: boom}, &countingSink{}
	m := NewMultiSink(a, b)
	assert.ErrorIs(t, m.RecordEdit("reset"), boom)
	assert.Equal(t, 0, b.edits)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, 9100, c.PrometheusPort)
	c = Config{PrometheusPort: 9200}
	c.SetDefaults()
	assert.Equal(t, 9200, c.PrometheusPort)
}
