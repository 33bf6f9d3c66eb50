package config

import (
	"fmt"
	"slices"

	"github.com/kilianp07/timetable/core/journal"
)

// JournalConfig selects the edit journal backend. Options are passed to the
// backend as is (path, max_size_mb, max_backups, max_age_days).
type JournalConfig struct {
	Backend string         `json:"backend"`
	Options map[string]any `json:"options"`
	// Token protects the journal endpoint with a bearer token when set.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *JournalConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = journal.BackendMemory
	}
}

// Validate checks the backend name.
func (c JournalConfig) Validate() error {
	if !slices.Contains(journal.Backends(), c.Backend) {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	return nil
}

// Store returns the journal store configuration.
func (c JournalConfig) Store() journal.Config {
	return journal.Config{Backend: c.Backend, Options: c.Options}
}
