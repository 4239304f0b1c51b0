package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/timer"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start today's work timer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransition(cmd.Context(), (*timer.Engine).Start, "Started work", "Timer cannot be started")
	},
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Take a break",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransition(cmd.Context(), (*timer.Engine).TakeBreak, "On break", "Timer is not running")
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "End the current break",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTransition(cmd.Context(), (*timer.Engine).EndBreak, "Back to work", "Not on a break")
	},
}

// runTransition applies one action. Ignored actions are reported but are not
// errors.
func runTransition(ctx context.Context, apply func(*timer.Engine, context.Context) bool, done, ignored string) error {
	e := loadEngine(ctx)
	applied := apply(e, ctx)
	d := e.DisplayState()

	if !applied {
		fmt.Fprintf(os.Stderr, "%s (state: %s).\n", ignored, describeState(d))
		return nil
	}
	if err := e.LastSaveError(); err != nil {
		exitWith(2, err)
	}
	fmt.Printf("%s. Elapsed: %s\n", done, formatElapsed(d.ElapsedSeconds))
	return nil
}

func describeState(d timer.DisplayState) string {
	if d.Ended {
		return "logged out"
	}
	return string(d.State)
}
