// Package health implements the dual-layer modem health check: an ICMP ping
// for the network layer and an HTTP request for the web server, run together
// and classified as one result.
package health

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dm/cmm-go/internal/model"
)

var hostPattern = regexp.MustCompile(`https?://([^:/]+)`)

// ExtractHost returns the host part of a URL-shaped target, or target itself
// when it does not look like a URL.
func ExtractHost(target string) string {
	if m := hostPattern.FindStringSubmatch(target); m != nil {
		return m[1]
	}
	return target
}

// Config holds Monitor settings. Zero values select the defaults.
type Config struct {
	MaxHistory         int
	PingTimeout        time.Duration
	HTTPTimeout        time.Duration
	InsecureSkipVerify bool
}

// Monitor runs health checks and keeps running counters plus a bounded
// history of results. It is safe for concurrent use.
type Monitor struct {
	pinger Pinger
	http   HTTPChecker
	log    zerolog.Logger
	now    func() time.Time

	mu                  sync.Mutex
	history             *model.HealthHistory
	totalChecks         int
	successfulChecks    int
	consecutiveFailures int
}

// NewMonitor returns a Monitor. A nil pinger or httpChecker selects the ICMP
// and HTTP implementations from this package.
func NewMonitor(cfg Config, pinger Pinger, httpChecker HTTPChecker, log zerolog.Logger) *Monitor {
	if pinger == nil {
		pinger = &ICMPPinger{Timeout: cfg.PingTimeout}
	}
	if httpChecker == nil {
		httpChecker = NewHTTPProber(cfg.HTTPTimeout, cfg.InsecureSkipVerify)
	}
	return &Monitor{
		pinger:  pinger,
		http:    httpChecker,
		log:     log,
		now:     time.Now,
		history: model.NewHealthHistory(cfg.MaxHistory),
	}
}

// Check pings the host of target and requests target over HTTP concurrently,
// then records the combined result. Sub-check failures, including panics,
// become a false/nil component of the result; Check itself never fails.
func (m *Monitor) Check(ctx context.Context, target string) model.HealthCheckResult {
	host := ExtractHost(target)
	httpURL := target
	if !strings.Contains(target, "://") {
		httpURL = "http://" + target
	}

	var (
		res model.HealthCheckResult
		g   errgroup.Group
	)

	g.Go(func() error {
		d, err := guard(func() (time.Duration, error) { return m.pinger.Ping(ctx, host) })
		if err != nil {
			m.log.Debug().Err(err).Str("host", host).Msg("Ping check failed")
			return nil
		}
		res.PingSuccess, res.PingLatencyMs = true, model.Millis(d)
		return nil
	})

	g.Go(func() error {
		d, err := guard(func() (time.Duration, error) { return m.http.Probe(ctx, httpURL) })
		if err != nil {
			m.log.Debug().Err(err).Str("url", httpURL).Msg("HTTP check failed")
			return nil
		}
		res.HTTPSuccess, res.HTTPLatencyMs = true, model.Millis(d)
		return nil
	})

	_ = g.Wait()
	res.Timestamp = m.now()

	m.record(res)
	m.log.Debug().
		Str("status", string(res.Status())).
		Bool("ping", res.PingSuccess).
		Bool("http", res.HTTPSuccess).
		Msg("Health check")
	return res
}

func guard(fn func() (time.Duration, error)) (d time.Duration, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("check panicked: %v", rec)
		}
	}()
	return fn()
}

func (m *Monitor) record(res model.HealthCheckResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalChecks++
	if res.IsHealthy() {
		m.consecutiveFailures = 0
		m.successfulChecks++
	} else {
		m.consecutiveFailures++
	}
	m.history.Push(res)
}

// History returns the recorded results, oldest first.
func (m *Monitor) History() []model.HealthCheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Items()
}

// Latencies returns successful latencies of one layer ("ping" or "http"),
// oldest first.
func (m *Monitor) Latencies(layer string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Latencies(layer)
}

// AveragePingLatency is the mean latency of successful pings in the history.
// ok is false when there are none.
func (m *Monitor) AveragePingLatency() (avg float64, ok bool) {
	return mean(m.Latencies("ping"))
}

// AverageHTTPLatency is the mean latency of successful HTTP checks in the
// history. ok is false when there are none.
func (m *Monitor) AverageHTTPLatency() (avg float64, ok bool) {
	return mean(m.Latencies("http"))
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Summary combines the latest result with the running counters.
type Summary struct {
	Status              model.HealthStatus `json:"status"`
	Diagnosis           string             `json:"diagnosis,omitempty"`
	ConsecutiveFailures int                `json:"consecutive_failures"`
	TotalChecks         int                `json:"total_checks"`
	SuccessfulChecks    int                `json:"successful_checks"`
	PingSuccess         bool               `json:"ping_success"`
	PingLatencyMs       *float64           `json:"ping_latency_ms,omitempty"`
	HTTPSuccess         bool               `json:"http_success"`
	HTTPLatencyMs       *float64           `json:"http_latency_ms,omitempty"`
	AvgPingLatencyMs    *float64           `json:"avg_ping_latency_ms,omitempty"`
	AvgHTTPLatencyMs    *float64           `json:"avg_http_latency_ms,omitempty"`
}

// Summary reports HealthUnknown with zero counters before the first check.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	latest, ok := m.history.Latest()
	s := Summary{
		ConsecutiveFailures: m.consecutiveFailures,
		TotalChecks:         m.totalChecks,
		SuccessfulChecks:    m.successfulChecks,
	}
	m.mu.Unlock()

	if !ok {
		return Summary{Status: model.HealthUnknown}
	}

	s.Status = latest.Status()
	s.Diagnosis = latest.Diagnosis()
	s.PingSuccess, s.PingLatencyMs = latest.PingSuccess, latest.PingLatencyMs
	s.HTTPSuccess, s.HTTPLatencyMs = latest.HTTPSuccess, latest.HTTPLatencyMs
	if avg, ok := m.AveragePingLatency(); ok {
		s.AvgPingLatencyMs = &avg
	}
	if avg, ok := m.AverageHTTPLatency(); ok {
		s.AvgHTTPLatencyMs = &avg
	}
	return s
}
