package export

import (
	"encoding/csv"
	"io"

	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/timetable"
)

// WriteCSV writes the filled grid: a Days column, one column per period and
// the closing column.
func WriteCSV(w io.Writer, s model.Settings) error {
	g := timetable.BuildGrid(s)
	cw := csv.NewWriter(w)
	if err := cw.Write(g.Header()); err != nil {
		return err
	}
	if err := cw.WriteAll(g.Records()); err != nil {
		return err
	}
	return cw.Error()
}
