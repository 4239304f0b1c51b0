package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/remote"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the EMS backend with a device code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := remote.TokenPath(cfg.Storage.Dir)
		tok, err := remote.Login(cmd.Context(), &cfg.Remote, path, os.Stdout)
		if err != nil {
			exitWith(1, err)
		}
		fmt.Printf("Signed in. Token saved to %s", path)
		if !tok.Expiry.IsZero() {
			fmt.Printf(" (expires %s)", tok.Expiry.Local().Format("2006-01-02 15:04"))
		}
		fmt.Println()
		return nil
	},
}
