package export

import (
	"encoding/json"
	"io"

	"github.com/kilianp07/timetable/core/model"
)

// WriteJSON writes the settings document indented with two spaces.
func WriteJSON(w io.Writer, s model.Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}
