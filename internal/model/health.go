package model

import "time"

// HealthStatus is the combined network/application layer classification.
type HealthStatus string

const (
	HealthHealthy      HealthStatus = "healthy"
	HealthDegraded     HealthStatus = "degraded"
	HealthICMPBlocked  HealthStatus = "icmp_blocked"
	HealthUnresponsive HealthStatus = "unresponsive"
	HealthUnknown      HealthStatus = "unknown"
)

// HealthCheckResult is the immutable outcome of one dual-layer check.
// Latencies are nil when the corresponding sub-check failed.
type HealthCheckResult struct {
	Timestamp     time.Time `json:"timestamp"`
	PingSuccess   bool      `json:"ping_success"`
	PingLatencyMs *float64  `json:"ping_latency_ms"`
	HTTPSuccess   bool      `json:"http_success"`
	HTTPLatencyMs *float64  `json:"http_latency_ms"`
}

// IsHealthy reports whether the modem answered on either layer.
func (r HealthCheckResult) IsHealthy() bool {
	return r.PingSuccess || r.HTTPSuccess
}

// Status maps the (ping, http) pair onto a HealthStatus.
func (r HealthCheckResult) Status() HealthStatus {
	switch {
	case r.PingSuccess && r.HTTPSuccess:
		return HealthHealthy
	case r.PingSuccess:
		return HealthDegraded
	case r.HTTPSuccess:
		return HealthICMPBlocked
	default:
		return HealthUnresponsive
	}
}

// Diagnosis returns a human readable explanation of Status.
func (r HealthCheckResult) Diagnosis() string {
	switch r.Status() {
	case HealthHealthy:
		return "Fully responsive"
	case HealthDegraded:
		return "Web server issue"
	case HealthICMPBlocked:
		return "ICMP blocked (firewall)"
	default:
		return "Network down / offline"
	}
}

// Millis returns a pointer to d expressed in fractional milliseconds.
func Millis(d time.Duration) *float64 {
	ms := float64(d) / float64(time.Millisecond)
	return &ms
}
