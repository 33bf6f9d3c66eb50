// Package journal keeps an append-only log of workspace edits. It is an audit
// trail, not a persistence layer: the timetable itself is never restored from
// it.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/timetable/core/timetable"
)

// Record captures one applied workspace change.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Value     string    `json:"value,omitempty"`
	Filled    int       `json:"filled"`
}

// FromChange converts a workspace change into a record with the given id.
func FromChange(id string, c timetable.Change) Record {
	return Record{
		ID:        id,
		Timestamp: c.At.UTC(),
		Action:    string(c.Action),
		Target:    c.Target,
		Value:     c.Value,
		Filled:    c.Filled,
	}
}

// Query filters records. Zero fields match everything; Limit keeps the most
// recent matches.
type Query struct {
	Start  time.Time
	End    time.Time
	Action string
	Target string
	Limit  int
}

func (q Query) matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Action != "" && r.Action != q.Action {
		return false
	}
	if q.Target != "" && r.Target != q.Target {
		return false
	}
	return true
}

func (q Query) trim(res []Record) []Record {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[len(res)-q.Limit:]
	}
	return res
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
