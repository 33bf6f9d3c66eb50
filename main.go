package main

import (
	"fmt"
	"os"

	"github.com/kilianp07/timetable/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "timetable:", err)
		os.Exit(1)
	}
}
