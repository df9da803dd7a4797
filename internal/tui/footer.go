package tui

import "github.com/charmbracelet/lipgloss"

// renderFooter renders the latest notification, if any, above the key help.
func renderFooter(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	text := "? for help"
	if app.showHelp {
		text = helpText
	}
	help := StyleDim.Width(width).Render(text)

	if app.notice == nil {
		return help
	}
	n := app.notice
	line := StyleYellow.Bold(true).Render(n.Title) + StyleDim.Render(" "+n.At.Format("15:04:05")+"  ") + n.Message
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().MaxWidth(width).Render(line), help)
}
