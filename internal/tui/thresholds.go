package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/model"
)

// severityToStyle maps a severity level to the cell style.
func severityToStyle(s model.AdvisorySeverity) lipgloss.Style {
	switch s {
	case model.SeverityWarning:
		return StyleYellow
	case model.SeverityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// errorSeverity colors a codeword counter: any uncorrectable error is a
// warning, corrected ones are informational.
func errorSeverity(uncorrected int64) model.AdvisorySeverity {
	if uncorrected > 0 {
		return model.SeverityWarning
	}
	return model.SeverityNormal
}

// latencySeverity flags a slow modem answer. The modem sits on the local
// segment, so anything past 100 ms is suspect and past 1 s is critical.
func latencySeverity(ms float64) model.AdvisorySeverity {
	switch {
	case ms > 1000:
		return model.SeverityCritical
	case ms > 100:
		return model.SeverityWarning
	default:
		return model.SeverityNormal
	}
}

// latencyTitleStyle keeps the card title dim unless the value crosses a
// threshold.
func latencyTitleStyle(s model.AdvisorySeverity) lipgloss.Style {
	if s == model.SeverityNormal {
		return StyleDim
	}
	return severityToStyle(s)
}
