// Package model holds the timetable document: the school profile, subjects,
// fixed items and the filled grid, together with their exported encoding.
package model

import (
	"encoding/json"
	"slices"

	"gopkg.in/yaml.v3"
)

// WeekDays are the standard selectable days.
var WeekDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Defaults applied to a fresh workspace.
const (
	DefaultSchoolName  = "Cape Coast Secondary"
	DefaultClosingTime = "3:00 PM"
)

// Settings is the complete workspace document.
type Settings struct {
	SchoolName     string            `json:"school_name" yaml:"school_name"`
	Days           []string          `json:"days" yaml:"days"`
	ClosingTime    string            `json:"closing_time" yaml:"closing_time"`
	Periods        []Period          `json:"periods" yaml:"periods"`
	Subjects       Subjects          `json:"subjects" yaml:"subjects"`
	NonNegotiables []FixedItem       `json:"non_negotiables" yaml:"non_negotiables"`
	Filled         map[string]string `json:"filled_timetable" yaml:"filled_timetable"`
	CustomItems    []string          `json:"custom_items" yaml:"custom_items"`
}

// DefaultSettings returns the starting document of a new workspace.
func DefaultSettings() Settings {
	return Settings{
		SchoolName:  DefaultSchoolName,
		Days:        slices.Clone(WeekDays[:5]),
		ClosingTime: DefaultClosingTime,
		Periods:     DefaultPeriods(),
		Subjects: Subjects{
			{Name: "Math", HoursPerWeek: 4},
			{Name: "English", HoursPerWeek: 5},
			{Name: "Science", HoursPerWeek: 4},
			{Name: "Social Studies", HoursPerWeek: 3},
			{Name: "ICT", HoursPerWeek: 2},
		},
		NonNegotiables: []FixedItem{},
		Filled:         map[string]string{},
		CustomItems:    []string{},
	}
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	out := s
	out.Days = slices.Clone(s.Days)
	out.Periods = slices.Clone(s.Periods)
	out.Subjects = slices.Clone(s.Subjects)
	out.NonNegotiables = slices.Clone(s.NonNegotiables)
	out.CustomItems = slices.Clone(s.CustomItems)
	out.Filled = make(map[string]string, len(s.Filled))
	for k, v := range s.Filled {
		out.Filled[k] = v
	}
	return out
}

// HasDay reports whether day is configured.
func (s Settings) HasDay(day string) bool { return slices.Contains(s.Days, day) }

// PeriodIndex returns the index of the named period or -1.
func (s Settings) PeriodIndex(name string) int {
	return slices.IndexFunc(s.Periods, func(p Period) bool { return p.Name == name })
}

// FixedAt returns the fixed item locking slot, if any.
func (s Settings) FixedAt(slot Slot) (FixedItem, bool) {
	if slot.Period < 0 || slot.Period >= len(s.Periods) {
		return FixedItem{}, false
	}
	name := s.Periods[slot.Period].Name
	for _, f := range s.NonNegotiables {
		if f.Day == slot.Day && f.Period == name {
			return f, true
		}
	}
	return FixedItem{}, false
}

// Cell returns the effective value of slot: the fixed value when locked,
// otherwise the filled text.
func (s Settings) Cell(slot Slot) (value string, fixed bool) {
	if f, ok := s.FixedAt(slot); ok {
		return f.Value(), true
	}
	return s.Filled[slot.Key()], false
}

// settingsDoc is the wire shape; periods carry their derived time_range.
type settingsDoc struct {
	SchoolName     string            `json:"school_name" yaml:"school_name"`
	Days           []string          `json:"days" yaml:"days"`
	ClosingTime    string            `json:"closing_time" yaml:"closing_time"`
	Periods        []periodJSON      `json:"periods" yaml:"periods"`
	Subjects       Subjects          `json:"subjects" yaml:"subjects"`
	NonNegotiables []FixedItem       `json:"non_negotiables" yaml:"non_negotiables"`
	Filled         map[string]string `json:"filled_timetable" yaml:"filled_timetable"`
	CustomItems    []string          `json:"custom_items" yaml:"custom_items"`
}

func (s Settings) document() settingsDoc {
	d := settingsDoc{
		SchoolName:     s.SchoolName,
		Days:           nonNil(s.Days),
		ClosingTime:    s.ClosingTime,
		Periods:        make([]periodJSON, len(s.Periods)),
		Subjects:       s.Subjects,
		NonNegotiables: s.NonNegotiables,
		Filled:         s.Filled,
		CustomItems:    nonNil(s.CustomItems),
	}
	for i, p := range s.Periods {
		d.Periods[i] = p.document()
	}
	if d.Subjects == nil {
		d.Subjects = Subjects{}
	}
	if d.NonNegotiables == nil {
		d.NonNegotiables = []FixedItem{}
	}
	if d.Filled == nil {
		d.Filled = map[string]string{}
	}
	return d
}

func (d settingsDoc) settings() Settings {
	s := Settings{
		SchoolName:     d.SchoolName,
		Days:           d.Days,
		ClosingTime:    d.ClosingTime,
		Periods:        make([]Period, len(d.Periods)),
		Subjects:       d.Subjects,
		NonNegotiables: d.NonNegotiables,
		Filled:         d.Filled,
		CustomItems:    d.CustomItems,
	}
	for i, p := range d.Periods {
		s.Periods[i] = Period{Name: p.Name, Start: p.Start, End: p.End}
	}
	return s
}

// MarshalJSON encodes the settings document.
func (s Settings) MarshalJSON() ([]byte, error) { return json.Marshal(s.document()) }

// UnmarshalJSON decodes a settings document.
func (s *Settings) UnmarshalJSON(b []byte) error {
	var d settingsDoc
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*s = d.settings()
	return nil
}

// MarshalYAML encodes the settings document.
func (s Settings) MarshalYAML() (any, error) { return s.document(), nil }

// UnmarshalYAML decodes a settings document.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	var d settingsDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	*s = d.settings()
	return nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
