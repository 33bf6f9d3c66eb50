package timetable

import "github.com/kilianp07/timetable/core/model"

// SubjectHours compares a subject's placed periods with its weekly target.
type SubjectHours struct {
	Subject string `json:"subject"`
	Used    int    `json:"used"`
	Target  int    `json:"target"`
	NoClash bool   `json:"no_clash"`
}

// Summary describes the configuration and the allocation per subject.
type Summary struct {
	SchoolName  string         `json:"school_name"`
	Days        []string       `json:"days"`
	Periods     int            `json:"periods"`
	ClosingTime string         `json:"closing_time"`
	Subjects    int            `json:"subjects"`
	FixedItems  int            `json:"fixed_items"`
	FilledCells int            `json:"filled_cells"`
	Hours       []SubjectHours `json:"hours"`
}

// Summarize builds the summary of s.
func Summarize(s model.Settings) Summary {
	used := UsedHours(s)
	sum := Summary{
		SchoolName:  s.SchoolName,
		Days:        append([]string(nil), s.Days...),
		Periods:     len(s.Periods),
		ClosingTime: s.ClosingTime,
		Subjects:    len(s.Subjects),
		FixedItems:  len(s.NonNegotiables),
		Hours:       make([]SubjectHours, 0, len(s.Subjects)),
	}
	for _, sub := range s.Subjects {
		sum.Hours = append(sum.Hours, SubjectHours{
			Subject: sub.Name,
			Used:    used[sub.Name],
			Target:  sub.HoursPerWeek,
			NoClash: sub.NoClash,
		})
	}
	for _, day := range s.Days {
		for p := range s.Periods {
			if v, _ := s.Cell(model.Slot{Day: day, Period: p}); v != "" {
				sum.FilledCells++
			}
		}
	}
	return sum
}

// UsedHours counts the periods each registered subject occupies across the
// configured grid, fixed items included.
func UsedHours(s model.Settings) map[string]int {
	used := map[string]int{}
	for _, day := range s.Days {
		for p := range s.Periods {
			v, _ := s.Cell(model.Slot{Day: day, Period: p})
			if s.Subjects.Has(v) {
				used[v]++
			}
		}
	}
	return used
}
