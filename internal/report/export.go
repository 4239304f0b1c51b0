package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown report format")

// Format is a report output encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
	FormatPDF      Format = "pdf"
)

var contentTypes = map[Format]string{
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatCSV:      "text/csv; charset=utf-8",
	FormatJSON:     "application/json",
	FormatYAML:     "application/yaml",
	FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:      "application/pdf",
}

// ParseFormat checks s against allowed.
func ParseFormat(s string, allowed ...Format) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", fmt.Errorf("%w %q (want %s)", ErrUnknownFormat, s, strings.Join(names, ", "))
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// FileName returns the default download name for a report.
func FileName(rep Report, f Format) string {
	return fmt.Sprintf("performance-%s-%s.%s", rep.Range, rep.To, f)
}

// Write encodes rep to w.
func Write(w io.Writer, f Format, rep Report) error {
	switch f {
	case FormatMarkdown:
		return writeMarkdown(w, rep)
	case FormatCSV:
		return writeCSV(w, rep)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, rep)
	case FormatPDF:
		return writePDF(w, rep)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, f)
	}
}

var columns = []string{
	"employee_id",
	"employee_name",
	"attendance_days",
	"avg_attendance_per_month",
	"leave_days",
	"avg_leave_per_month",
	"tasks_total",
	"tasks_completed",
	"completion_rate",
}

func rows(rep Report) [][]string {
	out := make([][]string, 0, len(rep.Employees))
	for _, m := range rep.Employees {
		out = append(out, []string{
			m.EmployeeID,
			m.EmployeeName,
			fmt.Sprintf("%d", m.TotalAttendanceDays),
			formatFloat(m.AvgAttendancePerMonth),
			formatFloat(m.TotalLeaveDays),
			formatFloat(m.AvgLeavePerMonth),
			fmt.Sprintf("%d", m.TasksTotal),
			fmt.Sprintf("%d", m.TasksCompleted),
			formatFloat(m.CompletionRate),
		})
	}
	return out
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func title(rep Report) string {
	if rep.From == "" {
		return fmt.Sprintf("Performance (%s, until %s)", rep.Range, rep.To)
	}
	return fmt.Sprintf("Performance (%s, %s to %s)", rep.Range, rep.From, rep.To)
}
