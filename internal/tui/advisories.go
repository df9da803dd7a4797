package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dm/cmm-go/internal/model"
)

// maxAdvisoryLines caps the advisory panel below the channel tables.
const maxAdvisoryLines = 12

func categoryLabel(cat model.AdvisoryCategory) string {
	switch cat {
	case model.CategoryConnectivity:
		return "Connectivity"
	case model.CategoryDownstreamSignal:
		return "Downstream Signal"
	case model.CategoryUpstreamSignal:
		return "Upstream Signal"
	case model.CategoryErrors:
		return "Errors"
	default:
		return "Other"
	}
}

// severityBadge returns a colored, fixed-width badge for the given severity.
func severityBadge(sev model.AdvisorySeverity) string {
	switch sev {
	case model.SeverityCritical:
		return StyleRed.Bold(true).Render("[CRITICAL]")
	case model.SeverityWarning:
		return StyleYellow.Bold(true).Render("[WARN]    ")
	default:
		return StyleGreen.Bold(true).Render("[OK]      ")
	}
}

// wrapText wraps text at maxWidth rune-columns, breaking at word boundaries.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 || utf8.RuneCountInString(text) <= maxWidth {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var lines []string
	var current strings.Builder
	var currentLen int
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case currentLen == 0:
			current.WriteString(word)
			currentLen = wordLen
		case currentLen+1+wordLen <= maxWidth:
			current.WriteByte(' ')
			current.WriteString(word)
			currentLen += 1 + wordLen
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
			currentLen = wordLen
		}
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// buildAdvisoryLines groups advisories by category in a fixed order.
func buildAdvisoryLines(advs []model.Advisory, width int) []string {
	if len(advs) == 0 {
		return []string{"  " + StyleGreen.Bold(true).Render("No issues found. Signal levels look good.")}
	}

	categories := []model.AdvisoryCategory{
		model.CategoryConnectivity,
		model.CategoryDownstreamSignal,
		model.CategoryUpstreamSignal,
		model.CategoryErrors,
	}
	var lines []string
	for _, cat := range categories {
		var catAdvs []model.Advisory
		for _, a := range advs {
			if a.Category == cat {
				catAdvs = append(catAdvs, a)
			}
		}
		if len(catAdvs) == 0 {
			continue
		}
		lines = append(lines, "  "+StyleDim.Bold(true).Underline(true).Render(categoryLabel(cat)))
		for _, a := range catAdvs {
			lines = append(lines, fmt.Sprintf("  %s %s", severityBadge(a.Severity), a.Title))
			if a.Detail != "" {
				for _, dline := range strings.Split(wrapText(a.Detail, width-6), "\n") {
					lines = append(lines, "    "+dline)
				}
			}
		}
	}
	return lines
}

// renderAdvisories renders the advisory panel. Nothing is shown before the
// first poll.
func renderAdvisories(app *App) string {
	if app.current == nil && app.advisories == nil {
		return ""
	}
	width := app.width
	if width <= 0 {
		width = 80
	}

	lines := buildAdvisoryLines(app.advisories, width)
	if len(lines) > maxAdvisoryLines {
		hidden := len(lines) - (maxAdvisoryLines - 1)
		lines = append(lines[:maxAdvisoryLines-1], StyleDim.Render(fmt.Sprintf("  … %d more lines", hidden)))
	}
	return StyleDim.Render("Advisories") + "\n" + strings.Join(lines, "\n")
}
