package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

// renderMetricCard renders a single card with title, value and sparkline.
//
//	╭──────────────────╮
//	│ Ping Latency     │   ← dim, or yellow/red past a threshold
//	│ 3.4 ms           │   ← bold, metric color
//	│ ▁▂▃▅▇█▇▅▃▂       │
//	╰──────────────────╯
func renderMetricCard(title, value string, sparkValues []float64, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	const minCardWidth = 8
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	// Border (2) plus padding (2) plus the Width() padding allowance (2).
	innerWidth := cardWidth - 6
	if innerWidth < 1 {
		innerWidth = 1
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		valueStyle.Render(value),
		RenderSparkline(sparkValues, innerWidth, color),
	))
}

// metricCards builds the latency and error rate cards in display order.
func metricCards(app *App, cardWidth int) []string {
	var (
		pingValues, httpValues []float64
		summaryPing            *float64
		summaryHTTP            *float64
	)
	if app.health != nil {
		pingValues = app.health.Latencies("ping")
		httpValues = app.health.Latencies("http")
		s := app.health.Summary()
		summaryPing, summaryHTTP = s.PingLatencyMs, s.HTTPLatencyMs
	}

	return []string{
		renderMetricCard("Ping Latency", latencyValue(summaryPing), pingValues, cardWidth, colorGreen,
			latencyTitleStyle(latencySeverityOf(summaryPing))),
		renderMetricCard("HTTP Latency", latencyValue(summaryHTTP), httpValues, cardWidth, colorCyan,
			latencyTitleStyle(latencySeverityOf(summaryHTTP))),
		renderMetricCard("Corrected /min", fmt.Sprintf("%.1f", app.rates.CorrectedPerMin), app.corrected, cardWidth, colorYellow, StyleDim),
		renderMetricCard("Uncorrected /min", fmt.Sprintf("%.1f", app.rates.UncorrectedPerMin), app.uncorrect, cardWidth, colorRed,
			latencyTitleStyle(rateSeverity(app.rates))),
	}
}

func latencyValue(ms *float64) string {
	if ms == nil {
		return format.FormatLatency(0, false)
	}
	return format.FormatLatency(*ms, true)
}

func latencySeverityOf(ms *float64) model.AdvisorySeverity {
	if ms == nil {
		return model.SeverityNormal
	}
	return latencySeverity(*ms)
}

func rateSeverity(r model.ErrorRates) model.AdvisorySeverity {
	if r.UncorrectedPerMin > 0 {
		return model.SeverityWarning
	}
	return model.SeverityNormal
}

// renderMetricsRow renders the 4 cards under a "Line Quality" label.
// Wide terminals (>= 80 cols): 1x4 row. Narrow terminals: 2x2 grid.
func renderMetricsRow(app *App) string {
	if app.current == nil && app.health == nil {
		return ""
	}

	if app.width > 0 && app.width < 80 {
		// 2*(cardWidth-2) = app.width
		cardWidth := (app.width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		cards := metricCards(app, cardWidth)
		label := StyleDim.MaxWidth(app.width).Render("Line Quality")
		top := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3])
		return lipgloss.JoinVertical(lipgloss.Left, label, top, bottom)
	}

	// 4*(cardWidth-2) = app.width
	cardWidth := (app.width + 8) / 4
	if cardWidth < 20 {
		cardWidth = 20
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, metricCards(app, cardWidth)...)
	return lipgloss.JoinVertical(lipgloss.Left, StyleDim.Render("Line Quality"), row)
}
