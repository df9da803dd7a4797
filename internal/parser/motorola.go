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
	motorolaLoginPath      = "/goform/login"
	motorolaConnectionPath = "/MotoConnection.asp"
	motorolaSecurityPath   = "/goform/MotoSecurity"

	// A logged-out MB modem still answers 200 with a short login form, so a
	// protected page only counts as authenticated above this size.
	motorolaMinAuthenticatedBytes = 1000
)

var motorolaInfoLabels = map[string]string{
	"software version":        "software_version",
	"hardware version":        "hardware_version",
	"system up time":          "system_uptime",
	"specification compliant": "docsis_version",
	"connectivity state":      "connectivity_state",
}

// Motorola parses the MB series connection page (MotoConnection.asp). It is
// the generic fallback for Motorola firmware and is registered last.
type Motorola struct{}

var _ Restarter = (*Motorola)(nil)

func (*Motorola) Name() string         { return "Motorola MB Series" }
func (*Motorola) Manufacturer() string { return "Motorola" }

func (*Motorola) Detect(page Page) bool {
	lu := strings.ToLower(page.URL)
	if strings.Contains(lu, "motoconnection") || strings.Contains(lu, "moto_connection") || strings.Contains(lu, "motohome") {
		return true
	}
	if page.Doc.Find("td.moto-param-header-s").Length() > 0 {
		return true
	}
	return strings.Contains(strings.ToLower(page.Title()), "motorola")
}

func (m *Motorola) Parse(page Page) model.RawExtraction {
	raw := model.RawExtraction{
		Downstream: []model.ChannelReading{},
		Upstream:   []model.ChannelReading{},
		SystemInfo: labelValues(page.Doc, "tr", motorolaInfoLabels),
	}

	page.Doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := tableRows(table)
		if rows.Length() < 2 {
			return
		}
		headers := texts(rows.First().ChildrenFiltered(".moto-param-header-s"))
		if len(headers) == 0 || columnIndex(headers, "channel") < 0 {
			return
		}
		body := rows.Slice(1, goquery.ToEnd)

		switch {
		case columnIndex(headers, "snr") >= 0:
			raw.Downstream = append(raw.Downstream, motorolaDownstream(headers, body)...)
		case columnIndex(headers, "symb", "upstream", "transmit") >= 0:
			raw.Upstream = append(raw.Upstream, motorolaUpstream(headers, body)...)
		}
	})

	return raw
}

func channelIDColumn(headers []string) int {
	if i := columnIndex(headers, "channel id"); i >= 0 {
		return i
	}
	return columnIndex(headers, "channel")
}

// skipRow drops short rows and the trailing "Total" row some firmware adds.
func skipRow(cells, headers []string) bool {
	if len(cells) < len(headers) || len(cells) == 0 {
		return true
	}
	first := strings.ToLower(cells[0])
	return first == "" || strings.HasPrefix(first, "total")
}

func motorolaDownstream(headers []string, rows *goquery.Selection) []model.ChannelReading {
	var (
		idCol   = channelIDColumn(headers)
		modCol  = columnIndex(headers, "modulation")
		freqCol = columnIndex(headers, "freq")
		pwrCol  = columnIndex(headers, "pwr", "power")
		snrCol  = columnIndex(headers, "snr")
		corrCol = columnIndex(headers, "corrected")
		uncCol  = columnIndex(headers, "uncorrected")
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

func motorolaUpstream(headers []string, rows *goquery.Selection) []model.ChannelReading {
	var (
		idCol   = channelIDColumn(headers)
		freqCol = columnIndex(headers, "freq")
		pwrCol  = columnIndex(headers, "pwr", "power")
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

// Login posts the MB login form. MB firmware redirects to the login page even
// on success, so the session is verified by loading the connection page,
// which is handed back as the refreshed page.
func (*Motorola) Login(ctx context.Context, s Session, creds Credentials) (LoginResult, error) {
	form := url.Values{
		"loginUsername": {creds.Username},
		"loginPassword": {creds.Password},
	}
	if _, err := s.PostForm(ctx, s.URL(motorolaLoginPath), form); err != nil {
		return LoginResult{}, fmt.Errorf("motorola login: %w", err)
	}

	resp, err := s.Get(ctx, s.URL(motorolaConnectionPath), false)
	if err != nil {
		return LoginResult{}, fmt.Errorf("motorola login verify: %w", err)
	}
	if resp.StatusCode != http.StatusOK || len(resp.Body) <= motorolaMinAuthenticatedBytes {
		return LoginResult{OK: false}, nil
	}
	return LoginResult{OK: true, HTML: resp.Body}, nil
}

// Restart submits the reboot action of the MB security page.
func (*Motorola) Restart(ctx context.Context, s Session) (bool, error) {
	form := url.Values{
		"UserId":             {""},
		"OldPassword":        {""},
		"NewUserId":          {""},
		"Password":           {""},
		"PasswordReEnter":    {""},
		"MotoSecurityAction": {"1"},
	}
	resp, err := s.PostForm(ctx, s.URL(motorolaSecurityPath), form)
	if err != nil {
		return false, fmt.Errorf("motorola restart: %w", err)
	}
	return resp.StatusCode < http.StatusBadRequest, nil
}
