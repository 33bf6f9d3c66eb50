package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// SubjectConfig seeds one subject.
type SubjectConfig struct {
	Name         string `json:"name"`
	HoursPerWeek int    `json:"hours_per_week"`
	NoClash      bool   `json:"no_clash"`
}

// SchoolConfig overrides the built-in starting workspace. Empty fields keep
// the defaults. SettingsFile, when set, is an exported settings document
// loaded at startup instead.
type SchoolConfig struct {
	Name         string          `json:"name"`
	Days         []string        `json:"days"`
	ClosingTime  string          `json:"closing_time"`
	Subjects     []SubjectConfig `json:"subjects"`
	SettingsFile string          `json:"settings_file"`
}

// Validate checks the seeded subjects.
func (c SchoolConfig) Validate() error {
	seen := map[string]bool{}
	for _, s := range c.Subjects {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("subject name is required")
		}
		if seen[name] {
			return fmt.Errorf("duplicate subject %s", name)
		}
		seen[name] = true
		if s.HoursPerWeek != 0 && !model.ValidHours(s.HoursPerWeek) {
			return fmt.Errorf("subject %s: hours_per_week must be between %d and %d", name, model.MinHoursPerWeek, model.MaxHoursPerWeek)
		}
	}
	return nil
}

// Settings returns the starting workspace with the overrides applied.
func (c SchoolConfig) Settings() model.Settings {
	s := model.DefaultSettings()
	if name := strings.TrimSpace(c.Name); name != "" {
		s.SchoolName = name
	}
	if len(c.Days) > 0 {
		s.Days = append([]string(nil), c.Days...)
	}
	if c.ClosingTime != "" {
		s.ClosingTime = c.ClosingTime
	}
	if len(c.Subjects) > 0 {
		s.Subjects = make(model.Subjects, 0, len(c.Subjects))
		for _, sc := range c.Subjects {
			hours := sc.HoursPerWeek
			if hours == 0 {
				hours = model.DefaultHoursPerWeek
			}
			s.Subjects = append(s.Subjects, model.Subject{Name: strings.TrimSpace(sc.Name), HoursPerWeek: hours, NoClash: sc.NoClash})
		}
	}
	return s
}
