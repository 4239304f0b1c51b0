package cmd

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/remote"
	"github.com/Tiliavir/worktimer/internal/report"
	"github.com/Tiliavir/worktimer/internal/server"
)

var (
	serveAddr  string
	serveInput string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timer and reports over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		var src report.Source
		s, err := reportSource(ctx, serveInput)
		switch {
		case err == nil:
			src = s
		case errors.Is(err, remote.ErrNoBaseURL):
			log.Info("report endpoints disabled: no backend or --input configured")
		default:
			return fmt.Errorf("report source: %w", err)
		}

		engines := server.NewEngineManager(repo, timerOptions(), log)
		defer engines.Close()

		h := server.NewHandler(engines, newSubmitter(ctx), src, nil, log)
		router := server.NewRouter(h, log)

		fmt.Printf("Serving on %s\n", addr)
		if err := server.ListenAndServe(ctx, addr, router, log); err != nil {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
	serveCmd.Flags().StringVar(&serveInput, "input", "", "Serve reports from a JSON or YAML file instead of the backend")
}
