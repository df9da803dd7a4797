package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/engine"
	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   modem address (or "Connecting to <target>..." before the first poll)
//	center: colored "● STATUS" indicator, a spinner while a restart is monitored
//	right:  "Last: HH:MM:SS  Poll: 10m" (or "Press r to retry" when disconnected)
func renderHeader(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}

	var left, center, right string

	if app.current == nil {
		left = "Connecting to " + app.target + "..."
		if app.connState == stateDisconnected && app.lastError != nil {
			center = StyleError.Render("● " + strings.ToUpper(string(statusOf(app))) + "  " + classifyError(app.lastError))
			right = StyleError.Render("Press r to retry")
		}
	} else {
		left = app.target

		if app.connState == stateDisconnected {
			display := "● " + strings.ToUpper(string(statusOf(app)))
			if msg := classifyError(app.lastError); msg != "" {
				display += "  " + msg
			}
			center = StyleError.Render(display)
			right = StyleError.Render("Press r to retry")
		} else {
			status := app.current.ConnectionStatus
			center = StatusStyle(status).Render("● " + strings.ToUpper(string(status)))
			right = StyleDim.Render(fmt.Sprintf("Last: %s  Poll: %s",
				app.lastUpdated.Format("15:04:05"), format.FormatInterval(app.pollInterval())))
		}
	}

	if app.restarting {
		center = app.spinner.View() + StyleYellow.Render(" Restarting")
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	spacing := innerWidth - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right

	return StyleHeader.Width(width).Render(row)
}

// statusOf returns the connection status implied by the last failure.
func statusOf(app *App) model.ConnectionStatus {
	switch engine.ReasonOf(app.lastError) {
	case engine.ReasonUnreachable, engine.ReasonLoginFailed:
		return model.StatusUnreachable
	}
	return model.StatusOffline
}

// classifyError shortens a fetch error for the header.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	switch engine.ReasonOf(err) {
	case engine.ReasonUnreachable:
		return "Modem unreachable"
	case engine.ReasonLoginFailed:
		return "Login failed"
	case engine.ReasonParserNotFound:
		return "Unsupported modem"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}
	msg := err.Error()
	if len(msg) > 40 {
		msg = msg[:40] + "..."
	}
	return msg
}
