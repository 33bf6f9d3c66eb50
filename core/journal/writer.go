package journal

import (
	"context"

	"github.com/google/uuid"

	"github.com/kilianp07/timetable/core/timetable"
	"github.com/kilianp07/timetable/infra/logger"
)

// Writer appends workspace changes to a store.
type Writer struct {
	store Store
	log   logger.Logger
	newID func() string
}

// NewWriter returns a writer backed by store. A nil logger disables logging.
func NewWriter(store Store, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Writer{store: store, log: log, newID: uuid.NewString}
}

// Write records a single change.
func (w *Writer) Write(ctx context.Context, c timetable.Change) error {
	return w.store.Append(ctx, FromChange(w.newID(), c))
}

// Run consumes changes until ctx is done or ch is closed.
func (w *Writer) Run(ctx context.Context, ch <-chan timetable.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-ch:
			if !ok {
				return
			}
			if err := w.Write(ctx, c); err != nil {
				w.log.Errorf("journal append %s: %v", c.Action, err)
			}
		}
	}
}
