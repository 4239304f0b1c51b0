package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/report"
)

var (
	reportRange  string
	reportFormat string
	reportInput  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show employee performance metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := report.ParseFormat(reportFormat, report.FormatMarkdown, report.FormatCSV, report.FormatJSON, report.FormatYAML)
		if err != nil {
			exitWith(1, err)
		}
		rep := buildReport(cmd, reportRange, reportInput)
		if err := report.Write(os.Stdout, format, rep); err != nil {
			exitWith(2, err)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportRange, "range", "month", "Range: all, today, week, month, year")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json, yaml")
	reportCmd.Flags().StringVar(&reportInput, "input", "", "Read records from a JSON or YAML file instead of the backend")
}

// buildReport loads the dataset and aggregates it.
func buildReport(cmd *cobra.Command, rangeName, input string) report.Report {
	r, err := report.ParseRange(rangeName)
	if err != nil {
		exitWith(1, err)
	}
	src, err := reportSource(cmd.Context(), input)
	if err != nil {
		exitWith(1, err)
	}
	ds, err := src.FetchDataset(cmd.Context())
	if err != nil {
		exitWith(2, fmt.Errorf("loading report data: %w", err))
	}
	return report.Aggregate(ds, r, time.Now())
}
