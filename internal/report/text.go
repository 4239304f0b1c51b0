package report

import (
	"fmt"
	"io"
	"strings"
)

func writeMarkdown(w io.Writer, rep Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title(rep))
	b.WriteString("------------------------------------------------------------------------\n")
	if len(rep.Employees) == 0 {
		b.WriteString("No records found.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	fmt.Fprintf(&b, "%-20s%8s%10s%8s%10s%8s%10s\n", "Employee", "Days", "Days/mo", "Leave", "Leave/mo", "Tasks", "Done %")
	for _, m := range rep.Employees {
		fmt.Fprintf(&b, "%-20s%8d%10.2f%8.2f%10.2f%8d%10.2f\n",
			truncate(m.EmployeeName, 19),
			m.TotalAttendanceDays,
			m.AvgAttendancePerMonth,
			m.TotalLeaveDays,
			m.AvgLeavePerMonth,
			m.TasksTotal,
			m.CompletionRate,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func writeCSV(w io.Writer, rep Report) error {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ",") + "\n")
	for _, row := range rows(rep) {
		for i, field := range row {
			row[i] = csvEscape(field)
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
