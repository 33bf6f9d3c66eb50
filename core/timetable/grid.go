package timetable

import "github.com/kilianp07/timetable/core/model"

// Cell is one rendered grid cell.
type Cell struct {
	Value     string `json:"value"`
	Fixed     bool   `json:"fixed"`
	IsSubject bool   `json:"is_subject"`
}

// Row is one day of the grid.
type Row struct {
	Day   string `json:"day"`
	Cells []Cell `json:"cells"`
}

// Grid is the rendered timetable: one row per day, one cell per period, and
// the closing column.
type Grid struct {
	SchoolName  string         `json:"school_name"`
	ClosingTime string         `json:"closing_time"`
	Periods     []model.Period `json:"periods"`
	Rows        []Row          `json:"rows"`
}

// BuildGrid renders s with fixed items applied.
func BuildGrid(s model.Settings) Grid {
	g := Grid{
		SchoolName:  s.SchoolName,
		ClosingTime: s.ClosingTime,
		Periods:     append([]model.Period(nil), s.Periods...),
		Rows:        make([]Row, 0, len(s.Days)),
	}
	for _, day := range s.Days {
		row := Row{Day: day, Cells: make([]Cell, len(s.Periods))}
		for p := range s.Periods {
			v, fixed := s.Cell(model.Slot{Day: day, Period: p})
			row.Cells[p] = Cell{Value: v, Fixed: fixed, IsSubject: s.Subjects.Has(v)}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// Header returns the column titles used by tabular exports.
func (g Grid) Header() []string {
	h := make([]string, 0, len(g.Periods)+2)
	h = append(h, "Days")
	for _, p := range g.Periods {
		h = append(h, p.Name)
	}
	return append(h, "Closing")
}

// Records returns the grid as rows of text matching Header.
func (g Grid) Records() [][]string {
	out := make([][]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		rec := make([]string, 0, len(r.Cells)+2)
		rec = append(rec, r.Day)
		for _, c := range r.Cells {
			rec = append(rec, c.Value)
		}
		out = append(out, append(rec, g.ClosingTime))
	}
	return out
}
