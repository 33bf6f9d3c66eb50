package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/timetable"
)

// RunChangeCollector records every workspace change on sink. It returns when
// ctx is canceled or sub is closed.
func RunChangeCollector(ctx context.Context, sub <-chan timetable.Change, sink coremetrics.Sink) {
	if sub == nil || sink == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-sub:
			if !ok {
				return
			}
			_ = sink.RecordEdit(string(c.Action))
			_ = sink.SetFilledCells(c.Filled)
		}
	}
}
