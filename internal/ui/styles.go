package ui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night palette for the terminal simulator.
var (
	primaryColor = lipgloss.Color("#7aa2f7")
	successColor = lipgloss.Color("#9ece6a")
	errorColor   = lipgloss.Color("#f7768e")
	mutedColor   = lipgloss.Color("#565f89")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(successColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)
