package scheduler

import (
	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/timetable"
)

// Filler fills empty cells according to Config.
type Filler struct {
	Config Config
}

// New returns a Filler with defaults applied.
func New(cfg Config) *Filler {
	cfg.SetDefaults()
	return &Filler{Config: cfg}
}

// Fill returns one assignment per cell it decides to fill. Fixed items come
// first; already filled cells are never proposed. A grid without days or
// periods has no cells and yields no assignments.
func (f *Filler) Fill(s model.Settings) ([]model.Assignment, error) {
	if len(s.Days) == 0 || len(s.Periods) == 0 {
		return nil, nil
	}
	maxPerDay := f.Config.MaxPerDay
	if maxPerDay <= 0 {
		maxPerDay = 1
	}

	var out []model.Assignment
	for _, item := range s.NonNegotiables {
		p := s.PeriodIndex(item.Period)
		if p < 0 || !s.HasDay(item.Day) {
			continue
		}
		slot := model.Slot{Day: item.Day, Period: p}
		if s.Filled[slot.Key()] == "" {
			out = append(out, model.Assignment{Slot: slot, Value: item.Value()})
		}
	}
	if !f.Config.FillRemaining {
		return out, nil
	}

	used := timetable.UsedHours(s)
	for _, day := range s.Days {
		perDay := map[string]int{}
		for p := range s.Periods {
			if v, _ := s.Cell(model.Slot{Day: day, Period: p}); v != "" {
				perDay[v]++
			}
		}
		for p := range s.Periods {
			slot := model.Slot{Day: day, Period: p}
			if v, _ := s.Cell(slot); v != "" {
				continue
			}
			sub, ok := pick(s.Subjects, used, perDay, maxPerDay)
			if !ok {
				continue
			}
			used[sub]++
			perDay[sub]++
			out = append(out, model.Assignment{Slot: slot, Value: sub})
		}
	}
	return out, nil
}

// pick returns the subject with the largest remaining weekly need that may
// still be placed today. Ties keep subject order.
func pick(subjects model.Subjects, used, perDay map[string]int, maxPerDay int) (string, bool) {
	best, bestNeed := "", 0
	for _, sub := range subjects {
		need := sub.HoursPerWeek - used[sub.Name]
		if need <= 0 || perDay[sub.Name] >= maxPerDay {
			continue
		}
		if need > bestNeed {
			best, bestNeed = sub.Name, need
		}
	}
	return best, bestNeed > 0
}
