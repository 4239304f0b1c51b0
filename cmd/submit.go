package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/submit"
)

var (
	submitBlockers string
	submitName     string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's work log to the backend and a local file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		e := loadEngine(ctx)

		name := submitName
		if name == "" {
			name = cfg.Employee.Name
		}
		res, err := newSubmitter(ctx).Submit(ctx, e, name, submitBlockers)
		if errors.Is(err, submit.ErrSessionNotEnded) {
			fmt.Fprintln(os.Stderr, `Nothing to submit: run "wt logout" first.`)
			os.Exit(1)
		}
		return printSubmission(res, err)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitBlockers, "blockers", "", "Anything that blocked you today")
	submitCmd.Flags().StringVar(&submitName, "name", "", "Employee name (default employee.name)")
}
