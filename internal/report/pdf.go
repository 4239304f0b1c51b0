package report

import (
	"fmt"
	"io"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

var pdfHeaders = []string{"Employee", "Days", "Days/mo", "Leave", "Leave/mo", "Tasks", "Done %"}

func writePDF(w io.Writer, rep Report) error {
	m := pdf.NewMaroto(consts.Landscape, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Employee performance", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(title(rep), props.Text{
					Top:   3,
					Style: consts.Normal,
					Align: consts.Center,
					Size:  12,
				})
			})
		})
	})

	content := make([][]string, 0, len(rep.Employees))
	for _, e := range rep.Employees {
		content = append(content, []string{
			e.EmployeeName,
			fmt.Sprintf("%d", e.TotalAttendanceDays),
			formatFloat(e.AvgAttendancePerMonth),
			formatFloat(e.TotalLeaveDays),
			formatFloat(e.AvgLeavePerMonth),
			fmt.Sprintf("%d/%d", e.TasksCompleted, e.TasksTotal),
			formatFloat(e.CompletionRate),
		})
	}

	if len(content) == 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("No records found.", props.Text{Top: 5, Align: consts.Center, Size: 10})
			})
		})
	} else {
		grid := []uint{3, 1, 2, 1, 2, 1, 2}
		m.TableList(pdfHeaders, content, props.TableList{
			HeaderProp: props.TableListContent{
				Size:      10,
				GridSizes: grid,
			},
			ContentProp: props.TableListContent{
				Size:      10,
				GridSizes: grid,
			},
			Align:                consts.Center,
			AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
			HeaderContentSpace:   1,
			Line:                 false,
		})
	}

	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Generated %s", rep.GeneratedAt.Format("2006-01-02 15:04")), props.Text{
				Top:   10,
				Style: consts.Italic,
				Align: consts.Right,
				Size:  9,
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("rendering pdf: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
