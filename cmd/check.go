package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/timetable/app"
	"github.com/kilianp07/timetable/core/clash"
)

// ErrClashes is returned by the check command when the timetable has clashes.
var ErrClashes = errors.New("timetable has clashes")

var checkSettings string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report clashes and warnings in a settings file",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkSettings, "settings", "", "settings file (.json or .yaml)")
	_ = checkCmd.MarkFlagRequired("settings")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := app.ReadSettings(checkSettings)
	if err != nil {
		return err
	}
	report := clash.Check(s)
	out := cmd.OutOrStdout()
	for _, f := range report.Clashes {
		fmt.Fprintf(out, "clash: %s\n", f.Message)
	}
	for _, f := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", f.Message)
	}
	if !report.OK() {
		return fmt.Errorf("%w: %d found", ErrClashes, len(report.Clashes))
	}
	if len(report.Warnings) == 0 {
		fmt.Fprintln(out, "no clashes found")
	}
	return nil
}
