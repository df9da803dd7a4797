package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline draws values as a block sparkline exactly width cells wide.
// Values are scaled between their minimum and maximum so jitter around a
// non-zero baseline (a 3 ms ping) stays visible. A flat series renders at the
// floor. Only the last width values are drawn; shorter series are left-padded.
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := slices.Min(values), slices.Max(values)
	if lo > 0 && len(values) == 1 {
		lo = 0
	}
	span := hi - lo

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - lo) / span * 7)
		}
		idx = max(0, min(idx, 7))
		sb.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}
