package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/timetable/core/model"
)

// Decode reads a settings document in JSON or YAML. Fields missing from the
// document keep their zero value; validation is left to the caller.
func Decode(r io.Reader, f Format) (model.Settings, error) {
	var s model.Settings
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return model.Settings{}, fmt.Errorf("decode json settings: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&s); err != nil {
			return model.Settings{}, fmt.Errorf("decode yaml settings: %w", err)
		}
	default:
		return model.Settings{}, fmt.Errorf("cannot read settings from %q", f)
	}
	return s, nil
}
