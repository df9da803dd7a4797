package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dm/cmm-go/internal/format"
	"github.com/dm/cmm-go/internal/model"
)

const (
	technicolorLoginPath   = "/check.jst"
	technicolorStatusPath  = "/network_setup.jst"
	technicolorRestartPath = "/actionHandler/ajaxSet_Reset_Restore.jst"
)

var technicolorInfoLabels = map[string]string{
	"hw version":       "hardware_version",
	"download version": "software_version",
	"boot version":     "boot_version",
	"model":            "model_name",
	"vendor":           "vendor",
	"system uptime":    "system_uptime",
}

// Technicolor parses the XB6/XB7 gateway status page (network_setup.jst).
// Its channel tables are transposed: one row per field, one column per
// channel. Error counters live in a separate codeword table whose columns
// line up with the downstream table.
type Technicolor struct{}

var _ Restarter = (*Technicolor)(nil)

func (*Technicolor) Name() string         { return "Technicolor XB6/XB7" }
func (*Technicolor) Manufacturer() string { return "Technicolor" }

func (*Technicolor) Detect(page Page) bool {
	if strings.Contains(strings.ToLower(page.URL), "network_setup.jst") {
		return true
	}
	return page.Doc.Find(".row-label").Length() > 0 && strings.Contains(page.HTML, "Power Level")
}

// fieldRows is a transposed table: label → per-channel values.
type fieldRows []struct {
	label  string
	values []string
}

func (f fieldRows) value(prefix string, i int) string {
	for _, r := range f {
		if strings.HasPrefix(r.label, prefix) {
			return cell(r.values, i)
		}
	}
	return ""
}

func (f fieldRows) width(prefix string) int {
	for _, r := range f {
		if strings.HasPrefix(r.label, prefix) {
			return len(r.values)
		}
	}
	return 0
}

func transposed(rows *goquery.Selection) fieldRows {
	var out fieldRows
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row)
		if len(cells) < 2 {
			return
		}
		out = append(out, struct {
			label  string
			values []string
		}{strings.ToLower(cells[0]), cells[1:]})
	})
	return out
}

func (*Technicolor) Parse(page Page) model.RawExtraction {
	raw := model.RawExtraction{
		Downstream: []model.ChannelReading{},
		Upstream:   []model.ChannelReading{},
		SystemInfo: technicolorSystemInfo(page.Doc),
	}

	var codewords fieldRows
	page.Doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table)
		if rows.Length() < 2 {
			return
		}
		title := strings.ToLower(cleanText(rows.First().Text()))
		fields := transposed(rows.Slice(1, goquery.ToEnd))

		switch {
		case strings.Contains(title, "codeword"):
			codewords = fields
		case strings.HasPrefix(title, "downstream"):
			for i := 0; i < fields.width("channel id"); i++ {
				raw.Downstream = append(raw.Downstream, model.ChannelReading{
					ChannelID:  format.ExtractInt(fields.value("channel id", i)),
					Frequency:  frequencyHz(fields.value("frequency", i)),
					Power:      format.ExtractFloat(fields.value("power", i)),
					SNR:        format.ExtractFloat(fields.value("snr", i)),
					Modulation: fields.value("modulation", i),
				})
			}
		case strings.HasPrefix(title, "upstream"):
			for i := 0; i < fields.width("channel id"); i++ {
				raw.Upstream = append(raw.Upstream, model.ChannelReading{
					ChannelID: format.ExtractInt(fields.value("channel id", i)),
					Frequency: frequencyHz(fields.value("frequency", i)),
					Power:     format.ExtractFloat(fields.value("power", i)),
				})
			}
		}
	})

	for i := range raw.Downstream {
		raw.Downstream[i].Corrected = format.ExtractCount(codewords.value("correctable", i))
		raw.Downstream[i].Uncorrected = format.ExtractCount(codewords.value("uncorrectable", i))
	}

	return raw
}

func technicolorSystemInfo(doc *goquery.Document) map[string]string {
	info := map[string]string{}
	doc.Find("div.form-row").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSuffix(cleanText(row.Find(".readonlyLabel").Text()), ":"))
		value := cleanText(row.Find(".value").Text())
		if key, ok := technicolorInfoLabels[label]; ok && value != "" {
			info[key] = value
		}
	})
	return info
}

// Login posts the gateway login form, then loads the status page. An
// unauthenticated session is redirected to the logged-out home page.
func (*Technicolor) Login(ctx context.Context, s Session, creds Credentials) (LoginResult, error) {
	form := url.Values{
		"username": {creds.Username},
		"password": {creds.Password},
		"locale":   {"false"},
	}
	if _, err := s.PostForm(ctx, s.URL(technicolorLoginPath), form); err != nil {
		return LoginResult{}, fmt.Errorf("technicolor login: %w", err)
	}

	resp, err := s.Get(ctx, s.URL(technicolorStatusPath), false)
	if err != nil {
		return LoginResult{}, fmt.Errorf("technicolor login verify: %w", err)
	}
	if resp.StatusCode != http.StatusOK || strings.Contains(strings.ToLower(resp.URL), "loggedout") {
		return LoginResult{OK: false}, nil
	}
	return LoginResult{OK: true, HTML: resp.Body}, nil
}

// Restart asks the gateway to reboot the cable modem side of the device.
func (*Technicolor) Restart(ctx context.Context, s Session) (bool, error) {
	form := url.Values{"resetInfo": {`["btn1","Device","Router"]`}}
	resp, err := s.PostForm(ctx, s.URL(technicolorRestartPath), form)
	if err != nil {
		return false, fmt.Errorf("technicolor restart: %w", err)
	}
	return resp.StatusCode == http.StatusOK, nil
}
