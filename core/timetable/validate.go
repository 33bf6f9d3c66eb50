package timetable

import (
	"fmt"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// Validate normalises an imported settings document and rejects structural
// problems. Cells outside the configured grid are dropped.
func Validate(s model.Settings) (model.Settings, error) {
	s = normalise(s.Clone())
	if s.SchoolName == "" {
		return s, fmt.Errorf("%w: school name is empty", ErrInvalidSettings)
	}
	if len(s.Days) == 0 {
		return s, fmt.Errorf("%w: no days selected", ErrInvalidSettings)
	}
	if len(s.Periods) > model.MaxPeriods {
		return s, fmt.Errorf("%w: %d periods exceed the limit of %d", ErrInvalidSettings, len(s.Periods), model.MaxPeriods)
	}
	seen := map[string]bool{}
	for i, p := range s.Periods {
		if p.Name == "" {
			return s, fmt.Errorf("%w: period %d has no name", ErrInvalidSettings, i+1)
		}
		if seen[p.Name] {
			return s, fmt.Errorf("%w: duplicate period %q", ErrInvalidSettings, p.Name)
		}
		seen[p.Name] = true
	}
	seen = map[string]bool{}
	for _, sub := range s.Subjects {
		if sub.Name == "" {
			return s, fmt.Errorf("%w: subject without name", ErrInvalidSettings)
		}
		if seen[sub.Name] {
			return s, fmt.Errorf("%w: duplicate subject %q", ErrInvalidSettings, sub.Name)
		}
		seen[sub.Name] = true
		if !model.ValidHours(sub.HoursPerWeek) {
			return s, fmt.Errorf("%w: subject %q has %d hours per week", ErrInvalidSettings, sub.Name, sub.HoursPerWeek)
		}
	}
	seen = map[string]bool{}
	for _, f := range s.NonNegotiables {
		key := f.Day + "\x00" + f.Period
		if seen[key] {
			return s, fmt.Errorf("%w: %s - %s fixed twice", ErrInvalidSettings, f.Day, f.Period)
		}
		seen[key] = true
		if f.Value() == "" {
			return s, fmt.Errorf("%w: fixed item %s - %s has no value", ErrInvalidSettings, f.Day, f.Period)
		}
	}
	for key, v := range s.Filled {
		slot, err := model.ParseSlot(key)
		if err != nil || v == "" || !s.HasDay(slot.Day) || slot.Period >= len(s.Periods) {
			delete(s.Filled, key)
		}
	}
	return s, nil
}

// normalise trims text fields and replaces nil collections.
func normalise(s model.Settings) model.Settings {
	s.SchoolName = strings.TrimSpace(s.SchoolName)
	s.ClosingTime = strings.TrimSpace(s.ClosingTime)
	s.Days = uniqueTrimmed(s.Days)
	for i := range s.Periods {
		s.Periods[i].Name = strings.TrimSpace(s.Periods[i].Name)
		s.Periods[i].Start = strings.TrimSpace(s.Periods[i].Start)
		s.Periods[i].End = strings.TrimSpace(s.Periods[i].End)
	}
	for i := range s.Subjects {
		s.Subjects[i].Name = strings.TrimSpace(s.Subjects[i].Name)
	}
	for i := range s.NonNegotiables {
		s.NonNegotiables[i] = trimFixed(s.NonNegotiables[i])
	}
	if s.Subjects == nil {
		s.Subjects = model.Subjects{}
	}
	if s.NonNegotiables == nil {
		s.NonNegotiables = []model.FixedItem{}
	}
	if s.Filled == nil {
		s.Filled = map[string]string{}
	}
	if s.CustomItems == nil {
		s.CustomItems = []string{}
	}
	return s
}
