package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dm/cmm-go/internal/format"
)

// cellTexts returns the trimmed text of every th/td in row.
func cellTexts(row *goquery.Selection) []string {
	cells := row.ChildrenFiltered("th, td")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, cleanText(c.Text()))
	})
	return out
}

// cleanText collapses runs of whitespace, including &nbsp;, to one space.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// columnIndex returns the index of the first header starting with one of the
// prefixes (case-insensitive), or -1.
func columnIndex(headers []string, prefixes ...string) int {
	for i, h := range headers {
		lh := strings.ToLower(h)
		for _, p := range prefixes {
			if strings.HasPrefix(lh, p) {
				return i
			}
		}
	}
	return -1
}

// cell returns cells[i], or "" when i is out of range.
func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// frequencyHz reads a frequency that may be expressed in Hz or MHz. Values
// labelled MHz, or small enough that they can only be MHz, are scaled to Hz.
func frequencyHz(text string) float64 {
	f := format.ExtractFloat(text)
	if strings.Contains(strings.ToLower(text), "mhz") || (f > 0 && f < 10000) {
		return f * 1e6
	}
	return f
}

// labelValues collects "Label: value" pairs from two-cell rows whose label
// appears in labels, keyed by the mapped system info key.
func labelValues(doc *goquery.Document, selector string, labels map[string]string) map[string]string {
	info := map[string]string{}
	doc.Find(selector).Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 2 {
			return
		}
		label := strings.TrimSuffix(strings.TrimSpace(cells[0]), ":")
		if key, ok := labels[strings.ToLower(label)]; ok && cells[1] != "" {
			info[key] = cells[1]
		}
	})
	return info
}

// tableRows returns the rows that belong directly to table, skipping rows of
// nested tables. The HTML parser always wraps bare rows in a tbody.
func tableRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("thead, tbody, tfoot").ChildrenFiltered("tr")
}

// texts returns the cleaned text of each element in sel.
func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, cleanText(s.Text()))
	})
	return out
}
