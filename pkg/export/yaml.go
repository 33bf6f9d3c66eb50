package export

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/timetable/core/model"
)

// WriteYAML writes the settings document as YAML.
func WriteYAML(w io.Writer, s model.Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
