package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/submit"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work logs saved locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		artifacts, skipped, err := submit.List(cfg.Export.Dir)
		if err != nil {
			exitWith(2, err)
		}
		for _, path := range skipped {
			fmt.Fprintf(os.Stderr, "Warning: skipping unreadable work log %s\n", path)
		}

		if !listAll && cfg.Employee.ID != "" {
			filtered := artifacts[:0]
			for _, a := range artifacts {
				if a.Entry.EmployeeID == cfg.Employee.ID {
					filtered = append(filtered, a)
				}
			}
			artifacts = filtered
		}
		printList(artifacts)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Show work logs of every employee")
}

// printList groups work logs by date and prints them.
func printList(artifacts []submit.Artifact) {
	if len(artifacts) == 0 {
		fmt.Println("No work logs found.")
		return
	}

	var currentDay string
	for _, a := range artifacts {
		e := a.Entry
		if e.Date != currentDay {
			fmt.Println(e.Date)
			currentDay = e.Date
		}

		name := e.EmployeeID
		if e.EmployeeName != "" {
			name = e.EmployeeName + " (" + e.EmployeeID + ")"
		}
		blockers := ""
		if e.Blockers != nil {
			blockers = "  blockers: " + *e.Blockers
		}
		fmt.Printf("%s–%s  %s (%s)%s\n",
			e.StartTime.Local().Format("15:04"),
			e.EndTime.Local().Format("15:04"),
			name,
			timecalc.FormatDuration(e.DurationSeconds),
			blockers,
		)
	}
}
