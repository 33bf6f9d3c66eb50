// Package config loads the service configuration with koanf. Values come from
// an optional YAML or JSON file and are overridden by TT_ prefixed
// environment variables, where a double underscore separates nested keys
// (TT_JOURNAL__BACKEND=sqlite).
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/timetable/core/metrics"
	"github.com/kilianp07/timetable/core/scheduler"
	"github.com/kilianp07/timetable/infra/mqtt"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "TT_"

type Config struct {
	Server   ServerConfig     `json:"server"`
	School   SchoolConfig     `json:"school"`
	Journal  JournalConfig    `json:"journal"`
	Metrics  metrics.Config   `json:"metrics"`
	MQTT     mqtt.Config      `json:"mqtt"`
	Sentry   SentryConfig     `json:"sentry"`
	AutoFill scheduler.Config `json:"autofill"`
}

// Load reads path (when not empty), applies environment overrides, fills
// defaults and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Journal.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.AutoFill.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.School.Validate(); err != nil {
		return fmt.Errorf("school: %w", err)
	}
	if err := c.Journal.Validate(); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	if c.Metrics.PrometheusEnabled && (c.Metrics.PrometheusPort <= 0 || c.Metrics.PrometheusPort > 65535) {
		return fmt.Errorf("metrics: invalid prometheus_port %d", c.Metrics.PrometheusPort)
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	return c.AutoFill.Validate()
}
