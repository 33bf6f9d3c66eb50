package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
	"github.com/kilianp07/timetable/pkg/export"
)

var (
	exportSettings string
	exportFormat   string
	exportOutput   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a settings file as csv, json, yaml or xlsx",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSettings, "settings", "", "settings file (.json or .yaml)")
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatCSV), "output format: csv, json, yaml or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, standard output when empty")
	_ = exportCmd.MarkFlagRequired("settings")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	f, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	s, err := app.ReadSettings(exportSettings)
	if err != nil {
		return err
	}
	if exportOutput == "" {
		if err := export.Write(cmd.OutOrStdout(), s, f); err != nil {
			return fmt.Errorf("export %s: %w", f, err)
		}
		return nil
	}
	return writeFile(exportOutput, func(w io.Writer) error { return export.Write(w, s, f) })
}

// writeFile creates path and fills it with write. The file is removed when
// write or close fails, so no partial export is left behind.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err := write(file); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
