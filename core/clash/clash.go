// Package clash scans a filled timetable for subjects placed in incompatible
// slots and for allocations that break their weekly targets.
package clash

import (
	"fmt"

	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/timetable"
)

// Kind classifies a finding.
type Kind string

const (
	// KindDuplicateDay flags a subject placed more than once on a day.
	KindDuplicateDay Kind = "duplicate_day"
	// KindExceedsHours flags a subject placed more often than its weekly target.
	KindExceedsHours Kind = "exceeds_hours"
	// KindStaleFixed flags a fixed item pointing outside the configured grid.
	KindStaleFixed Kind = "stale_fixed"
)

// Finding is one clash or warning.
type Finding struct {
	Kind    Kind     `json:"kind"`
	Subject string   `json:"subject,omitempty"`
	Day     string   `json:"day,omitempty"`
	Periods []string `json:"periods,omitempty"`
	Message string   `json:"message"`
}

// Report groups blocking clashes and advisory warnings.
type Report struct {
	Clashes  []Finding `json:"clashes"`
	Warnings []Finding `json:"warnings"`
}

// OK reports whether the timetable is free of clashes.
func (r Report) OK() bool { return len(r.Clashes) == 0 }

// Check scans s. Only registered subjects are considered; custom text such as
// "Assembly" never clashes.
func Check(s model.Settings) Report {
	r := Report{Clashes: []Finding{}, Warnings: []Finding{}}
	for _, day := range s.Days {
		placed := map[string][]string{}
		var order []string
		for p, period := range s.Periods {
			v, _ := s.Cell(model.Slot{Day: day, Period: p})
			if !s.Subjects.Has(v) {
				continue
			}
			if _, seen := placed[v]; !seen {
				order = append(order, v)
			}
			placed[v] = append(placed[v], period.Name)
		}
		for _, sub := range order {
			if len(placed[sub]) < 2 {
				continue
			}
			r.Clashes = append(r.Clashes, Finding{
				Kind:    KindDuplicateDay,
				Subject: sub,
				Day:     day,
				Periods: placed[sub],
				Message: fmt.Sprintf("Subject '%s' appears multiple times on %s", sub, day),
			})
		}
	}

	used := timetable.UsedHours(s)
	for _, sub := range s.Subjects {
		n := used[sub.Name]
		if n <= sub.HoursPerWeek {
			continue
		}
		f := Finding{
			Kind:    KindExceedsHours,
			Subject: sub.Name,
			Message: fmt.Sprintf("Subject '%s' exceeds weekly hours: %d/%d", sub.Name, n, sub.HoursPerWeek),
		}
		if sub.NoClash {
			r.Clashes = append(r.Clashes, f)
		} else {
			r.Warnings = append(r.Warnings, f)
		}
	}

	for _, f := range s.NonNegotiables {
		if s.HasDay(f.Day) && s.PeriodIndex(f.Period) >= 0 {
			continue
		}
		r.Warnings = append(r.Warnings, Finding{
			Kind:    KindStaleFixed,
			Day:     f.Day,
			Periods: []string{f.Period},
			Message: fmt.Sprintf("Fixed item '%s' at %s - %s is outside the configured timetable", f.Value(), f.Day, f.Period),
		})
	}
	return r
}
