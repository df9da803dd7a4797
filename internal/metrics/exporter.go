// Package metrics exports the latest modem snapshot and health state in the
// Prometheus exposition format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dm/cmm-go/internal/health"
	"github.com/dm/cmm-go/internal/model"
)

const namespace = "cable_modem"

// Source supplies the most recent poll result.
type Source interface {
	Latest() (model.PollResult, bool)
}

// HealthSource supplies the running health summary.
type HealthSource interface {
	Summary() health.Summary
}

var (
	connectionStatuses = []model.ConnectionStatus{model.StatusOnline, model.StatusOffline, model.StatusUnreachable}
	healthStatuses     = []model.HealthStatus{
		model.HealthHealthy, model.HealthDegraded, model.HealthICMPBlocked, model.HealthUnresponsive, model.HealthUnknown,
	}
)

// Exporter is a prometheus.Collector reading state at scrape time. It never
// contacts the modem itself.
type Exporter struct {
	downFrequency   *prometheus.Desc
	downPower       *prometheus.Desc
	downSNR         *prometheus.Desc
	downCorrected   *prometheus.Desc
	downUncorrected *prometheus.Desc
	upFrequency     *prometheus.Desc
	upPower         *prometheus.Desc

	totalCorrected   *prometheus.Desc
	totalUncorrected *prometheus.Desc
	channelCount     *prometheus.Desc
	connection       *prometheus.Desc
	lastFetch        *prometheus.Desc
	fetchSuccess     *prometheus.Desc

	healthStatus        *prometheus.Desc
	pingLatency         *prometheus.Desc
	httpLatency         *prometheus.Desc
	consecutiveFailures *prometheus.Desc
	healthChecks        *prometheus.Desc

	source Source
	health HealthSource
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter returns an Exporter over source. hs may be nil when health
// checks are disabled.
func NewExporter(source Source, hs HealthSource) *Exporter {
	// index is the row position on the status page; channel IDs are not
	// guaranteed unique when a cell fails to parse.
	downLabels := []string{"index", "channel_id", "modulation"}
	upLabels := []string{"index", "channel_id"}

	return &Exporter{
		source: source,
		health: hs,
		downFrequency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "downstream", "frequency_hz"),
			"Downstream frequency in Hz",
			downLabels, nil,
		),
		downPower: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "downstream", "power_dbmv"),
			"Downstream power level in dBmV",
			downLabels, nil,
		),
		downSNR: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "downstream", "snr_db"),
			"Downstream SNR in dB",
			downLabels, nil,
		),
		downCorrected: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "downstream", "corrected"),
			"Corrected codewords reported for the channel since modem start",
			downLabels, nil,
		),
		downUncorrected: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "downstream", "uncorrected"),
			"Uncorrectable codewords reported for the channel since modem start",
			downLabels, nil,
		),
		upFrequency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "upstream", "frequency_hz"),
			"Upstream frequency in Hz",
			upLabels, nil,
		),
		upPower: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "upstream", "power_dbmv"),
			"Upstream transmit power in dBmV",
			upLabels, nil,
		),
		totalCorrected: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "total_corrected"),
			"Corrected codewords summed over downstream channels",
			nil, nil,
		),
		totalUncorrected: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "total_uncorrected"),
			"Uncorrectable codewords summed over downstream channels",
			nil, nil,
		),
		channelCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "channels"),
			"Number of channels reported per direction",
			[]string{"direction"}, nil,
		),
		connection: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connection_status"),
			"Connection status of the last fetch (1 for the current status)",
			[]string{"status"}, nil,
		),
		lastFetch: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_fetch_timestamp_seconds"),
			"Unix time of the last poll cycle",
			nil, nil,
		),
		fetchSuccess: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "last_fetch_success"),
			"1 if the last poll cycle fetched data",
			nil, nil,
		),
		healthStatus: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "health", "status"),
			"Dual-layer health status (1 for the current status)",
			[]string{"status"}, nil,
		),
		pingLatency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "health", "ping_latency_ms"),
			"Latency of the last successful ping in milliseconds",
			nil, nil,
		),
		httpLatency: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "health", "http_latency_ms"),
			"Latency of the last successful HTTP check in milliseconds",
			nil, nil,
		),
		consecutiveFailures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "health", "consecutive_failures"),
			"Health checks failed in a row",
			nil, nil,
		),
		healthChecks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "health", "checks_total"),
			"Health checks run",
			nil, nil,
		),
	}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.downFrequency
	ch <- e.downPower
	ch <- e.downSNR
	ch <- e.downCorrected
	ch <- e.downUncorrected
	ch <- e.upFrequency
	ch <- e.upPower
	ch <- e.totalCorrected
	ch <- e.totalUncorrected
	ch <- e.channelCount
	ch <- e.connection
	ch <- e.lastFetch
	ch <- e.fetchSuccess
	ch <- e.healthStatus
	ch <- e.pingLatency
	ch <- e.httpLatency
	ch <- e.consecutiveFailures
	ch <- e.healthChecks
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if res, ok := e.source.Latest(); ok {
		e.collectSnapshot(ch, res)
	}
	if e.health != nil {
		e.collectHealth(ch, e.health.Summary())
	}
}

func (e *Exporter) collectSnapshot(ch chan<- prometheus.Metric, res model.PollResult) {
	ch <- prometheus.MustNewConstMetric(e.lastFetch, prometheus.GaugeValue, float64(res.At.Unix()))
	ch <- prometheus.MustNewConstMetric(e.fetchSuccess, prometheus.GaugeValue, boolValue(res.Success()))

	snap := res.Snapshot
	if snap == nil {
		return
	}

	for i, c := range snap.Downstream {
		labels := []string{strconv.Itoa(i), strconv.FormatInt(c.ChannelID, 10), c.Modulation}
		ch <- prometheus.MustNewConstMetric(e.downFrequency, prometheus.GaugeValue, c.Frequency, labels...)
		ch <- prometheus.MustNewConstMetric(e.downPower, prometheus.GaugeValue, c.Power, labels...)
		ch <- prometheus.MustNewConstMetric(e.downSNR, prometheus.GaugeValue, c.SNR, labels...)
		ch <- prometheus.MustNewConstMetric(e.downCorrected, prometheus.GaugeValue, float64(c.Corrected), labels...)
		ch <- prometheus.MustNewConstMetric(e.downUncorrected, prometheus.GaugeValue, float64(c.Uncorrected), labels...)
	}
	for i, c := range snap.Upstream {
		labels := []string{strconv.Itoa(i), strconv.FormatInt(c.ChannelID, 10)}
		ch <- prometheus.MustNewConstMetric(e.upFrequency, prometheus.GaugeValue, c.Frequency, labels...)
		ch <- prometheus.MustNewConstMetric(e.upPower, prometheus.GaugeValue, c.Power, labels...)
	}

	ch <- prometheus.MustNewConstMetric(e.totalCorrected, prometheus.GaugeValue, float64(snap.TotalCorrected))
	ch <- prometheus.MustNewConstMetric(e.totalUncorrected, prometheus.GaugeValue, float64(snap.TotalUncorrected))
	ch <- prometheus.MustNewConstMetric(e.channelCount, prometheus.GaugeValue, float64(snap.DownstreamCount), "downstream")
	ch <- prometheus.MustNewConstMetric(e.channelCount, prometheus.GaugeValue, float64(snap.UpstreamCount), "upstream")

	for _, s := range connectionStatuses {
		ch <- prometheus.MustNewConstMetric(e.connection, prometheus.GaugeValue,
			boolValue(snap.ConnectionStatus == s), string(s))
	}
}

func (e *Exporter) collectHealth(ch chan<- prometheus.Metric, s health.Summary) {
	for _, st := range healthStatuses {
		ch <- prometheus.MustNewConstMetric(e.healthStatus, prometheus.GaugeValue, boolValue(s.Status == st), string(st))
	}
	if s.PingLatencyMs != nil {
		ch <- prometheus.MustNewConstMetric(e.pingLatency, prometheus.GaugeValue, *s.PingLatencyMs)
	}
	if s.HTTPLatencyMs != nil {
		ch <- prometheus.MustNewConstMetric(e.httpLatency, prometheus.GaugeValue, *s.HTTPLatencyMs)
	}
	ch <- prometheus.MustNewConstMetric(e.consecutiveFailures, prometheus.GaugeValue, float64(s.ConsecutiveFailures))
	ch <- prometheus.MustNewConstMetric(e.healthChecks, prometheus.CounterValue, float64(s.TotalChecks))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Handler returns an HTTP handler serving the exporter from its own registry.
func Handler(e *Exporter) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(e); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, e *Exporter, log zerolog.Logger) error {
	h, err := Handler(e)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("Starting Prometheus exporter")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
