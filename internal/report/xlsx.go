package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Performance"

func writeXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	last := colName(len(columns) - 1)
	widths := []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 12},
		{"B", "B", 24},
		{"C", last, 16},
	}
	for _, cw := range widths {
		if err := f.SetColWidth(sheetName, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", title(rep)); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", cell(last, 1)); err != nil {
		return fmt.Errorf("merging title: %w", err)
	}

	for i, h := range columns {
		if err := f.SetCellValue(sheetName, cell(colName(i), 2), h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A2", cell(last, 2), headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	row := 3
	for _, m := range rep.Employees {
		values := []any{
			m.EmployeeID,
			m.EmployeeName,
			m.TotalAttendanceDays,
			m.AvgAttendancePerMonth,
			m.TotalLeaveDays,
			m.AvgLeavePerMonth,
			m.TasksTotal,
			m.TasksCompleted,
			m.CompletionRate,
		}
		for i, v := range values {
			if err := f.SetCellValue(sheetName, cell(colName(i), row), v); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
