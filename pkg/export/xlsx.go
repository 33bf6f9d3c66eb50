package export

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/timetable/core/model"
	"github.com/kilianp07/timetable/core/timetable"
)

const maxSheetName = 31

// WriteXLSX writes the filled grid as a single-sheet workbook named after the
// school. The header row and fixed cells are bold.
func WriteXLSX(w io.Writer, s model.Settings) error {
	g := timetable.BuildGrid(s)
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(g.SchoolName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := g.Header()
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
			return err
		}
	}
	for r, row := range g.Rows {
		values := make([]string, 0, len(header))
		values = append(values, row.Day)
		for _, c := range row.Cells {
			values = append(values, c.Value)
		}
		values = append(values, g.ClosingTime)
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			fixed := col > 0 && col <= len(row.Cells) && row.Cells[col-1].Fixed
			if col == 0 || fixed {
				if err := f.SetCellStyle(sheet, cell, cell, bold); err != nil {
					return err
				}
			}
		}
	}
	_, err = f.WriteTo(w)
	return err
}

// SheetName turns a school name into a valid worksheet name.
func SheetName(school string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(school))
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Timetable"
	}
	return name
}
