package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/submit"
)

var (
	logoutSubmit   bool
	logoutBlockers string
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Stop work for today",
	Long: `Stops the timer for the rest of the day. The session stays stored until
it is submitted with "wt submit" (or --submit here).`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().BoolVar(&logoutSubmit, "submit", false, "Submit the work log right away")
	logoutCmd.Flags().StringVar(&logoutBlockers, "blockers", "", "Blockers to include when submitting")
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e := loadEngine(ctx)

	if !e.LogOut(ctx) {
		d := e.DisplayState()
		if !d.Ended {
			fmt.Fprintln(os.Stderr, "No running timer to log out.")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Already logged out.")
	} else {
		if err := e.LastSaveError(); err != nil {
			exitWith(2, err)
		}
		fmt.Printf("Logged out. Worked: %s\n", formatElapsed(e.Session().ElapsedSeconds))
	}

	if !logoutSubmit {
		fmt.Println(`Run "wt submit" to deliver your work log.`)
		return nil
	}
	return printSubmission(newSubmitter(ctx).Submit(ctx, e, cfg.Employee.Name, logoutBlockers))
}

func printSubmission(res submit.Result, err error) error {
	if err != nil {
		exitWith(1, err)
	}
	fmt.Println(res.Outcome.Message())
	if res.RemoteErr != nil {
		fmt.Fprintf(os.Stderr, "  remote: %v\n", res.RemoteErr)
	}
	if res.LocalErr != nil {
		fmt.Fprintf(os.Stderr, "  local: %v\n", res.LocalErr)
	}
	if res.ClearErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not clear the stored session: %v\n", res.ClearErr)
	}
	if !res.Outcome.Delivered() {
		os.Exit(1)
	}
	return nil
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
