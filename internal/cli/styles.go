package cli

import "github.com/charmbracelet/lipgloss"

var (
	styleOK = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	styleFail = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleCode = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	styleAdded = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	styleRemoved = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

func okMark() string   { return styleOK.Render("✓") }
func failMark() string { return styleFail.Render("✗") }
