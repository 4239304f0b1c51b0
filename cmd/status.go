package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/model"
	"github.com/Tiliavir/worktimer/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e := loadEngine(cmd.Context())
		d := e.DisplayState()
		s := e.Session()

		switch {
		case d.Ended:
			fmt.Println("Logged out (not yet submitted).")
		case d.State == model.StateRunning:
			fmt.Println("Running:")
		case d.State == model.StatePaused:
			fmt.Println("On break:")
		default:
			fmt.Println("Not started today.")
			return nil
		}
		fmt.Printf("  Employee: %s\n", d.EmployeeID)
		fmt.Printf("  Date: %s\n", d.Date)
		if s.WorkStartedAt != nil {
			fmt.Printf("  Since: %s\n", s.WorkStartedAt.Format("15:04"))
		}
		fmt.Printf("  Worked: %s (%s)\n", d.ElapsedFormatted, timecalc.FormatDuration(d.ElapsedSeconds))
		return nil
	},
}
