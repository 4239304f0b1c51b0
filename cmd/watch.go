package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactive timer in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		e := loadEngine(ctx)
		done := make(chan struct{})
		go func() {
			e.Run(ctx)
			close(done)
		}()

		err := tui.Run(ctx, e, newSubmitter(ctx), cfg.Employee.Name)
		cancel()
		<-done
		return err
	},
}
