package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/worktimer/internal/report"
)

var (
	exportRange  string
	exportFormat string
	exportInput  string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export employee performance metrics to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := report.ParseFormat(exportFormat, report.FormatCSV, report.FormatJSON, report.FormatXLSX, report.FormatPDF)
		if err != nil {
			exitWith(1, err)
		}
		rep := buildReport(cmd, exportRange, exportInput)

		out := exportOut
		if out == "" {
			out = report.FileName(rep, format)
		}
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				exitWith(2, err)
			}
		}

		f, err := os.Create(out)
		if err != nil {
			exitWith(2, err)
		}
		if err := report.Write(f, format, rep); err != nil {
			f.Close()
			_ = os.Remove(out)
			exitWith(2, err)
		}
		if err := f.Close(); err != nil {
			exitWith(2, err)
		}
		fmt.Printf("Wrote %s (%d employees)\n", out, len(rep.Employees))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRange, "range", "month", "Range: all, today, week, month, year")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, xlsx, pdf")
	exportCmd.Flags().StringVar(&exportInput, "input", "", "Read records from a JSON or YAML file instead of the backend")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default performance-<range>-<date>.<format>)")
}
