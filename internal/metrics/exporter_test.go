package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/cmm-go/internal/health"
	"github.com/dm/cmm-go/internal/model"
)

type fakeSource struct {
	res model.PollResult
	ok  bool
}

func (f fakeSource) Latest() (model.PollResult, bool) { return f.res, f.ok }

type fakeHealth struct{ s health.Summary }

func (f fakeHealth) Summary() health.Summary { return f.s }

func onlineResult() model.PollResult {
	at := time.Unix(1_700_000_000, 0)
	return model.PollResult{
		At: at,
		Snapshot: &model.Snapshot{
			ConnectionStatus: model.StatusOnline,
			Downstream: []model.ChannelReading{
				{ChannelID: 21, Frequency: 555e6, Power: 2.1, SNR: 40.1, Corrected: 10, Modulation: "QAM256"},
				{ChannelID: 22, Frequency: 561e6, Power: -0.4, SNR: 38.2, Uncorrected: 3, Modulation: "QAM256"},
			},
			Upstream: []model.ChannelReading{
				{ChannelID: 1, Frequency: 35.6e6, Power: 44.0},
			},
			TotalCorrected:   10,
			TotalUncorrected: 3,
			DownstreamCount:  2,
			UpstreamCount:    1,
			FetchedAt:        at,
		},
	}
}

func TestExporter_Snapshot(t *testing.T) {
	e := NewExporter(fakeSource{res: onlineResult(), ok: true}, nil)

	expected := `
# HELP cable_modem_downstream_power_dbmv Downstream power level in dBmV
# TYPE cable_modem_downstream_power_dbmv gauge
cable_modem_downstream_power_dbmv{channel_id="21",index="0",modulation="QAM256"} 2.1
cable_modem_downstream_power_dbmv{channel_id="22",index="1",modulation="QAM256"} -0.4
# HELP cable_modem_total_uncorrected Uncorrectable codewords summed over downstream channels
# TYPE cable_modem_total_uncorrected gauge
cable_modem_total_uncorrected 3
# HELP cable_modem_channels Number of channels reported per direction
# TYPE cable_modem_channels gauge
cable_modem_channels{direction="downstream"} 2
cable_modem_channels{direction="upstream"} 1
# HELP cable_modem_connection_status Connection status of the last fetch (1 for the current status)
# TYPE cable_modem_connection_status gauge
cable_modem_connection_status{status="offline"} 0
cable_modem_connection_status{status="online"} 1
cable_modem_connection_status{status="unreachable"} 0
# HELP cable_modem_last_fetch_success 1 if the last poll cycle fetched data
# TYPE cable_modem_last_fetch_success gauge
cable_modem_last_fetch_success 1
`
	err := testutil.CollectAndCompare(e, strings.NewReader(expected),
		"cable_modem_downstream_power_dbmv",
		"cable_modem_total_uncorrected",
		"cable_modem_channels",
		"cable_modem_connection_status",
		"cable_modem_last_fetch_success",
	)
	require.NoError(t, err)

	// 2 downstream x 5 + 1 upstream x 2 + totals 2 + counts 2 + status 3 + fetch 2
	assert.Equal(t, 21, testutil.CollectAndCount(e))
}

func TestExporter_NoDataYet(t *testing.T) {
	e := NewExporter(fakeSource{}, nil)
	assert.Equal(t, 0, testutil.CollectAndCount(e))
}

func TestExporter_FailedFetch(t *testing.T) {
	res := model.PollResult{
		At:       time.Unix(1_700_000_000, 0),
		Snapshot: model.EmptySnapshot(model.StatusUnreachable, time.Unix(1_700_000_000, 0)),
		Err:      assert.AnError,
	}
	e := NewExporter(fakeSource{res: res, ok: true}, nil)

	assert.Equal(t, 0, testutil.CollectAndCount(e, "cable_modem_downstream_power_dbmv"))
	expected := `
# HELP cable_modem_last_fetch_success 1 if the last poll cycle fetched data
# TYPE cable_modem_last_fetch_success gauge
cable_modem_last_fetch_success 0
`
	require.NoError(t, testutil.CollectAndCompare(e, strings.NewReader(expected), "cable_modem_last_fetch_success"))
	assert.Equal(t, 3, testutil.CollectAndCount(e, "cable_modem_connection_status"))
}

func TestExporter_Health(t *testing.T) {
	ping := 3.5
	e := NewExporter(fakeSource{}, fakeHealth{s: health.Summary{
		Status:              model.HealthDegraded,
		ConsecutiveFailures: 0,
		TotalChecks:         7,
		PingSuccess:         true,
		PingLatencyMs:       &ping,
	}})

	expected := `
# HELP cable_modem_health_ping_latency_ms Latency of the last successful ping in milliseconds
# TYPE cable_modem_health_ping_latency_ms gauge
cable_modem_health_ping_latency_ms 3.5
# HELP cable_modem_health_checks_total Health checks run
# TYPE cable_modem_health_checks_total counter
cable_modem_health_checks_total 7
# HELP cable_modem_health_status Dual-layer health status (1 for the current status)
# TYPE cable_modem_health_status gauge
cable_modem_health_status{status="degraded"} 1
cable_modem_health_status{status="healthy"} 0
cable_modem_health_status{status="icmp_blocked"} 0
cable_modem_health_status{status="unknown"} 0
cable_modem_health_status{status="unresponsive"} 0
`
	err := testutil.CollectAndCompare(e, strings.NewReader(expected),
		"cable_modem_health_ping_latency_ms",
		"cable_modem_health_checks_total",
		"cable_modem_health_status",
	)
	require.NoError(t, err)
	assert.Equal(t, 0, testutil.CollectAndCount(e, "cable_modem_health_http_latency_ms"))
}

func TestHandler(t *testing.T) {
	e := NewExporter(fakeSource{res: onlineResult(), ok: true}, nil)
	h, err := Handler(e)
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `cable_modem_upstream_power_dbmv{channel_id="1",index="0"} 44`)
}

func TestHandler_DuplicateChannelIDs(t *testing.T) {
	res := onlineResult()
	res.Snapshot.Downstream = []model.ChannelReading{
		{Frequency: 555e6, Power: 1.5, Modulation: "QAM256"},
		{Frequency: 561e6, Power: 2.5, Modulation: "QAM256"},
	}
	res.Snapshot.Upstream = []model.ChannelReading{{Power: 44}, {Power: 45}}
	h, err := Handler(NewExporter(fakeSource{res: res, ok: true}, nil))
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `cable_modem_downstream_power_dbmv{channel_id="0",index="0",modulation="QAM256"} 1.5`)
	assert.Contains(t, string(body), `cable_modem_downstream_power_dbmv{channel_id="0",index="1",modulation="QAM256"} 2.5`)
	assert.Contains(t, string(body), `cable_modem_upstream_power_dbmv{channel_id="0",index="1"} 45`)
}
