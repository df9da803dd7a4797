package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

// renderOverview renders the 6-stat overview bar.
// Wide terminals (>= 80 cols): all cards in a single row.
// Narrow terminals: cards stacked in rows of 2.
// Returns empty string if no snapshot is available yet.
func renderOverview(app *App) string {
	if app.current == nil {
		return ""
	}

	width := app.width
	if width <= 0 {
		width = 80
	}
	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 12) / 6
		if cardWidth < 8 {
			cardWidth = 8
		}
	}

	snap := app.current

	status := snap.ConnectionStatus
	card1 := StyleOverviewCard.
		Background(statusColor(status)).
		Foreground(colorDark).
		Bold(true).
		Width(cardWidth).
		Render(strings.ToUpper(string(status)) + "\nStatus")

	card2 := StyleOverviewCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(fmt.Sprintf("%d", snap.DownstreamCount) + "\nDownstream")

	card3 := StyleOverviewCard.
		Foreground(colorPurple).
		Width(cardWidth).
		Render(fmt.Sprintf("%d", snap.UpstreamCount) + "\nUpstream")

	card4 := StyleOverviewCard.
		Foreground(colorCyan).
		Width(cardWidth).
		Render(format.FormatNumber(snap.TotalCorrected) + "\nCorrected")

	uncorrected := format.FormatNumber(snap.TotalUncorrected)
	if snap.TotalUncorrected > 0 {
		uncorrected += "!"
	}
	card5 := StyleOverviewCard.
		Foreground(colorFor(errorSeverity(snap.TotalUncorrected), colorGreen)).
		Width(cardWidth).
		Render(uncorrected + "\nUncorrected")

	card6 := renderHealthCard(app, cardWidth)

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6)
}

func renderHealthCard(app *App, cardWidth int) string {
	status := model.HealthUnknown
	diagnosis := "No checks yet"
	if app.health != nil {
		s := app.health.Summary()
		status = s.Status
		if s.Diagnosis != "" {
			diagnosis = s.Diagnosis
		}
	}
	return StyleOverviewCard.
		Foreground(healthColor(status)).
		Width(cardWidth).
		Render(strings.ToUpper(string(status)) + "\n" + diagnosis + "\nHealth")
}

func colorFor(s model.AdvisorySeverity, normal lipgloss.Color) lipgloss.Color {
	switch s {
	case model.SeverityCritical:
		return colorRed
	case model.SeverityWarning:
		return colorYellow
	}
	return normal
}
