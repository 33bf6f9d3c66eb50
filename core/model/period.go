package model

import (
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the layout used to render period boundaries, e.g. "07:30 AM".
const ClockLayout = "03:04 PM"

// clockParseLayout accepts one or two digit hours.
const clockParseLayout = "3:04 PM"

// DefaultPeriodLength is the duration of generated periods.
const DefaultPeriodLength = 45 * time.Minute

// MaxPeriods bounds the number of periods in a school day.
const MaxPeriods = 10

// Period is a named teaching slot within a day.
type Period struct {
	Name  string `json:"name" yaml:"name"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// TimeRange renders the period boundaries as "start - end".
func (p Period) TimeRange() string {
	return p.Start + " - " + p.End
}

// ParseClock parses a 12-hour clock string such as "7:30 AM" or "07:30 pm".
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockParseLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t, nil
}

// FormatClock renders t using ClockLayout.
func FormatClock(t time.Time) string {
	return t.Format(ClockLayout)
}

// NewPeriod builds a period starting at start and lasting d.
func NewPeriod(name string, start time.Time, d time.Duration) Period {
	return Period{Name: name, Start: FormatClock(start), End: FormatClock(start.Add(d))}
}

// DefaultPeriods returns eight back to back 45 minute periods from 07:30 AM.
func DefaultPeriods() []Period {
	start := time.Date(0, 1, 1, 7, 30, 0, 0, time.UTC)
	periods := make([]Period, 0, 8)
	for i := 0; i < 8; i++ {
		periods = append(periods, NewPeriod(fmt.Sprintf("Period %d", i+1), start, DefaultPeriodLength))
		start = start.Add(DefaultPeriodLength)
	}
	return periods
}

// periodJSON carries the derived time_range field alongside the period.
type periodJSON struct {
	Name      string `json:"name" yaml:"name"`
	TimeRange string `json:"time_range" yaml:"time_range"`
	Start     string `json:"start" yaml:"start"`
	End       string `json:"end" yaml:"end"`
}

func (p Period) document() periodJSON {
	return periodJSON{Name: p.Name, TimeRange: p.TimeRange(), Start: p.Start, End: p.End}
}
