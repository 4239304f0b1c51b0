package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Tiliavir/worktimer/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder())
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	modalStyle   = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("12"))

	stateStyles = map[model.State]lipgloss.Style{
		model.StateRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		model.StatePaused:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		model.StateStopped: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)
