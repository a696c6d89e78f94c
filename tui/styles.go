package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	laneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	windowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	cleanStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	contaminatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	inspectingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	scrappingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)
