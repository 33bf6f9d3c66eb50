// Package export renders a timetable workspace to downloadable files and reads
// settings documents back.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kilianp07/timetable/core/model"
)

// Format names an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported export format.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatXLSX}

// ParseFormat accepts a format name or a file extension such as ".yml".
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// FileName returns the download name for a school: spaces become
// underscores, grids end in _timetable and settings documents in _settings.
func FileName(school string, f Format) string {
	base := strings.ReplaceAll(school, " ", "_")
	switch f {
	case FormatCSV, FormatXLSX:
		return base + "_timetable." + string(f)
	}
	return base + "_settings." + string(f)
}

// Write renders s to w in format f.
func Write(w io.Writer, s model.Settings, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatYAML:
		return WriteYAML(w, s)
	case FormatXLSX:
		return WriteXLSX(w, s)
	}
	return fmt.Errorf("unsupported export format %q", f)
}
