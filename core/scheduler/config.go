package scheduler

import "fmt"

// Config defines auto-fill behaviour.
type Config struct {
	// FillRemaining enables greedy placement in empty cells. When false only
	// fixed items are stamped.
	FillRemaining bool `json:"fill_remaining"`
	// MaxPerDay caps how often one subject may be placed on a day.
	MaxPerDay int `json:"max_per_day"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MaxPerDay == 0 {
		c.MaxPerDay = 1
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.MaxPerDay < 1 {
		return fmt.Errorf("autofill: max_per_day must be positive, got %d", c.MaxPerDay)
	}
	return nil
}
