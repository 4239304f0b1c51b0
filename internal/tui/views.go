package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	title := "Work timer"
	if m.employeeName != "" {
		title += " · " + m.employeeName
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("employee %s · %s", m.display.EmployeeID, m.display.Date)))
	b.WriteString("\n\n")

	state := string(m.display.State)
	if m.display.Ended {
		state = "logged out"
	}
	clock := lipgloss.JoinVertical(lipgloss.Center,
		m.display.ElapsedFormatted,
		stateStyles[m.display.State].Render(state),
	)
	b.WriteString(clockStyle.Render(clock))
	b.WriteString("\n\n")

	if m.mode == modeSubmit {
		b.WriteString(m.modalView())
		b.WriteString("\n")
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == modeSubmit {
		b.WriteString(m.help.View(modalHelp(m.keys)))
	} else {
		b.WriteString(m.help.View(timerHelp(m.keys)))
	}
	return b.String()
}

func (m Model) modalView() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("End of day"),
		fmt.Sprintf("Worked %s today.", m.display.ElapsedFormatted),
		"",
		m.textarea.View(),
	)
	return modalStyle.Render(body)
}
