package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/model"
)

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorOrange = lipgloss.Color("#f97316")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

var (
	StyleStatusGreen   = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusYellow  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusRed     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStatusUnknown = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleOverviewCard is a card in the overview bar.
var StyleOverviewCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGray)

	StyleTableRow = lipgloss.NewStyle().
			Foreground(colorWhite)

	StyleTableRowAlt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#cbd5e1"))
)

var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(colorOrange)
	StyleBlue   = lipgloss.NewStyle().Foreground(colorBlue)
	StyleCyan   = lipgloss.NewStyle().Foreground(colorCyan)
	StylePurple = lipgloss.NewStyle().Foreground(colorPurple)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// StatusStyle returns the header style for a connection status.
func StatusStyle(status model.ConnectionStatus) lipgloss.Style {
	switch status {
	case model.StatusOnline:
		return StyleStatusGreen
	case model.StatusOffline:
		return StyleStatusYellow
	case model.StatusUnreachable:
		return StyleStatusRed
	default:
		return StyleStatusUnknown
	}
}

// statusColor is the card background for a connection status.
func statusColor(status model.ConnectionStatus) lipgloss.Color {
	switch status {
	case model.StatusOnline:
		return colorGreen
	case model.StatusOffline:
		return colorYellow
	case model.StatusUnreachable:
		return colorRed
	default:
		return colorGray
	}
}

// healthColor colors the health card.
func healthColor(status model.HealthStatus) lipgloss.Color {
	switch status {
	case model.HealthHealthy:
		return colorGreen
	case model.HealthDegraded, model.HealthICMPBlocked:
		return colorYellow
	case model.HealthUnresponsive:
		return colorRed
	default:
		return colorGray
	}
}
