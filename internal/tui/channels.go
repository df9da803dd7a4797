package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/cmm-go/internal/engine"
	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

// columnDef describes a single column in a channel table.
type columnDef struct {
	Title string
	Width int
	Align lipgloss.Position
}

var downstreamColumns = []columnDef{
	{"Ch", 4, lipgloss.Right},
	{"Frequency", 12, lipgloss.Right},
	{"Power", 11, lipgloss.Right},
	{"SNR", 9, lipgloss.Right},
	{"Modulation", 11, lipgloss.Left},
	{"Corrected", 12, lipgloss.Right},
	{"Uncorrected", 12, lipgloss.Right},
}

var upstreamColumns = []columnDef{
	{"Ch", 4, lipgloss.Right},
	{"Frequency", 12, lipgloss.Right},
	{"Power", 11, lipgloss.Right},
}

// styledCell is one table cell and the style of its text.
type styledCell struct {
	text  string
	style lipgloss.Style
}

func plain(text string) styledCell {
	return styledCell{text: text, style: lipgloss.NewStyle()}
}

// renderTable lays out a header and rows in fixed-width columns.
// Alternate rows use a lighter foreground.
func renderTable(title string, cols []columnDef, rows [][]styledCell) string {
	var lines []string
	lines = append(lines, StyleDim.Bold(true).Render(title))

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = StyleTableHeader.Width(c.Width).Align(c.Align).Render(c.Title)
	}
	lines = append(lines, strings.Join(header, " "))

	if len(rows) == 0 {
		lines = append(lines, StyleDim.Render("  no channels"))
		return strings.Join(lines, "\n")
	}

	for r, row := range rows {
		base := StyleTableRow
		if r%2 == 1 {
			base = StyleTableRowAlt
		}
		cells := make([]string, len(cols))
		for i, c := range cols {
			var cell styledCell
			if i < len(row) {
				cell = row[i]
			}
			st := base.Width(c.Width).MaxWidth(c.Width).Align(c.Align)
			if cell.style.GetForeground() != (lipgloss.NoColor{}) {
				st = st.Foreground(cell.style.GetForeground())
			}
			cells[i] = st.Render(cell.text)
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	return strings.Join(lines, "\n")
}

func downstreamRows(channels []model.ChannelReading) [][]styledCell {
	rows := make([][]styledCell, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, []styledCell{
			plain(strconv.FormatInt(ch.ChannelID, 10)),
			plain(format.FormatFrequency(ch.Frequency)),
			{format.FormatPower(ch.Power), severityToStyle(engine.DownstreamPowerSeverity(ch.Power))},
			{format.FormatSNR(ch.SNR), severityToStyle(engine.SNRSeverity(ch.SNR))},
			plain(modulationText(ch.Modulation)),
			plain(format.FormatNumber(ch.Corrected)),
			{format.FormatNumber(ch.Uncorrected), severityToStyle(errorSeverity(ch.Uncorrected))},
		})
	}
	return rows
}

func upstreamRows(channels []model.ChannelReading) [][]styledCell {
	rows := make([][]styledCell, 0, len(channels))
	for _, ch := range channels {
		rows = append(rows, []styledCell{
			plain(strconv.FormatInt(ch.ChannelID, 10)),
			plain(format.FormatFrequency(ch.Frequency)),
			{format.FormatPower(ch.Power), severityToStyle(engine.UpstreamPowerSeverity(ch.Power))},
		})
	}
	return rows
}

func modulationText(m string) string {
	if m == "" {
		return format.NotAvailable
	}
	return m
}

// renderChannels renders the downstream table with the upstream table beside
// it on wide terminals and below it otherwise.
func renderChannels(app *App) string {
	if app.current == nil {
		return ""
	}
	down := renderTable("Downstream", downstreamColumns, downstreamRows(app.current.Downstream))
	up := renderTable("Upstream", upstreamColumns, upstreamRows(app.current.Upstream))

	if app.width >= lipgloss.Width(down)+lipgloss.Width(up)+4 {
		return lipgloss.JoinHorizontal(lipgloss.Top, down, "    ", up)
	}
	return lipgloss.JoinVertical(lipgloss.Left, down, "", up)
}
