package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

const arrisStatusPath = "/cmconnectionstatus.html"

var arrisInfoLabels = map[string]string{
	"connectivity state": "connectivity_state",
	"boot state":         "boot_state",
	"configuration file": "config_file",
	"security":           "security",
}

// Arris parses the SB8200/S33 family status page (cmconnectionstatus.html).
// Its bonded channel tables carry a title row, then a header row, then one
// row per channel, with frequencies in Hz.
type Arris struct{}

func (*Arris) Name() string         { return "ARRIS SB8200" }
func (*Arris) Manufacturer() string { return "ARRIS" }

func (*Arris) Detect(page Page) bool {
	if strings.Contains(strings.ToLower(page.URL), "cmconnectionstatus") {
		return true
	}
	return strings.Contains(strings.ToUpper(page.HTML), "ARRIS") &&
		strings.Contains(page.HTML, "Downstream Bonded Channels")
}

func (*Arris) Parse(page Page) model.RawExtraction {
	raw := model.RawExtraction{
		Downstream: []model.ChannelReading{},
		Upstream:   []model.ChannelReading{},
		SystemInfo: labelValues(page.Doc, "tr", arrisInfoLabels),
	}
	if modelName := cleanText(page.Doc.Find("#thisModelNumberIs").First().Text()); modelName != "" {
		raw.SystemInfo["model_name"] = modelName
	}
	if sysTime := page.Doc.Find("#systime").First(); sysTime.Length() > 0 {
		label := sysTime.Find("strong").Text()
		if v := cleanText(strings.Replace(sysTime.Text(), label, "", 1)); v != "" {
			raw.SystemInfo["current_time"] = v
		}
	}

	page.Doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table)
		if rows.Length() < 3 {
			return
		}
		title := strings.ToLower(cleanText(rows.First().Text()))
		headers := cellTexts(rows.Eq(1))
		body := rows.Slice(2, goquery.ToEnd)

		switch {
		case strings.Contains(title, "downstream bonded"):
			raw.Downstream = append(raw.Downstream, arrisDownstream(headers, body)...)
		case strings.Contains(title, "upstream bonded"):
			raw.Upstream = append(raw.Upstream, arrisUpstream(headers, body)...)
		}
	})

	return raw
}

func arrisDownstream(headers []string, rows *goquery.Selection) []model.ChannelReading {
	var (
		idCol   = channelIDColumn(headers)
		modCol  = columnIndex(headers, "modulation")
		freqCol = columnIndex(headers, "frequency")
		pwrCol  = columnIndex(headers, "power")
		snrCol  = columnIndex(headers, "snr")
		corrCol = columnIndex(headers, "corrected")
		uncCol  = columnIndex(headers, "uncorrect")
		out     []model.ChannelReading
	)
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if skipRow(cells, headers) {
			return
		}
		out = append(out, model.ChannelReading{
			ChannelID:   format.ExtractInt(cell(cells, idCol)),
			Frequency:   frequencyHz(cell(cells, freqCol)),
			Power:       format.ExtractFloat(cell(cells, pwrCol)),
			SNR:         format.ExtractFloat(cell(cells, snrCol)),
			Corrected:   format.ExtractCount(cell(cells, corrCol)),
			Uncorrected: format.ExtractCount(cell(cells, uncCol)),
			Modulation:  cell(cells, modCol),
		})
	})
	return out
}

func arrisUpstream(headers []string, rows *goquery.Selection) []model.ChannelReading {
	var (
		idCol   = channelIDColumn(headers)
		freqCol = columnIndex(headers, "frequency")
		pwrCol  = columnIndex(headers, "power")
		out     []model.ChannelReading
	)
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if skipRow(cells, headers) {
			return
		}
		out = append(out, model.ChannelReading{
			ChannelID: format.ExtractInt(cell(cells, idCol)),
			Frequency: frequencyHz(cell(cells, freqCol)),
			Power:     format.ExtractFloat(cell(cells, pwrCol)),
		})
	})
	return out
}

// Login re-requests the status page with HTTP Basic auth. The authenticated
// page is returned so no second request is needed.
func (*Arris) Login(ctx context.Context, s Session, _ Credentials) (LoginResult, error) {
	resp, err := s.Get(ctx, s.URL(arrisStatusPath), true)
	if err != nil {
		return LoginResult{}, fmt.Errorf("arris login: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return LoginResult{OK: false}, nil
	}
	return LoginResult{OK: true, HTML: resp.Body}, nil
}
