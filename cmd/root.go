package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/worktimer/internal/config"
	"github.com/Tiliavir/worktimer/internal/logger"
	"github.com/Tiliavir/worktimer/internal/storage"
)

var (
	configPath   string
	employeeFlag string

	cfg       *config.Config
	log       *zap.Logger
	repo      storage.Repository
	closeRepo func() error
)

var rootCmd = &cobra.Command{
	Use:   "wt",
	Short: "wt – employee work timer",
	Long: `wt tracks one working day per employee: start, take breaks, log out,
and submit the day's work log to the EMS backend and a local file.
Settings live in ~/.worktimer/config.yaml.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.worktimer/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&employeeFlag, "employee", "", "Employee ID (overrides employee.id)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		exitWith(1, err)
	}
	if employeeFlag != "" {
		cfg.Employee.ID = employeeFlag
	}

	log, err = logger.NewLogger(&cfg.Log)
	if err != nil {
		exitWith(1, err)
	}

	repo, closeRepo, err = storage.Open(&cfg.Storage, log)
	if err != nil {
		exitWith(2, err)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeRepo != nil {
		if err := closeRepo(); err != nil {
			log.Warn("closing storage", zap.Error(err))
		}
	}
	_ = log.Sync()
	return nil
}

// exitWith prints err and exits: 1 for user errors, 2 for storage and I/O.
func exitWith(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
