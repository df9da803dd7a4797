package model

const defaultHistoryCap = 100

// HealthHistory is a fixed-size ring buffer of HealthCheckResults.
// When the buffer is full, new pushes overwrite the oldest entry.
// It is not safe for concurrent use; the health monitor guards it.
type HealthHistory struct {
	buf  []HealthCheckResult
	head int // index of the next write position
	size int // number of valid entries
}

// NewHealthHistory creates a HealthHistory with the given capacity.
// If capacity <= 0, defaultHistoryCap (100) is used.
func NewHealthHistory(capacity int) *HealthHistory {
	if capacity <= 0 {
		capacity = defaultHistoryCap
	}
	return &HealthHistory{
		buf: make([]HealthCheckResult, capacity),
	}
}

// Push appends a result, evicting the oldest one if full.
func (h *HealthHistory) Push(r HealthCheckResult) {
	h.buf[h.head] = r
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries in the history.
func (h *HealthHistory) Len() int {
	return h.size
}

// Cap returns the maximum number of entries kept.
func (h *HealthHistory) Cap() int {
	return len(h.buf)
}

// Latest returns the most recent result, or false when empty.
func (h *HealthHistory) Latest() (HealthCheckResult, bool) {
	if h.size == 0 {
		return HealthCheckResult{}, false
	}
	return h.buf[(h.head-1+len(h.buf))%len(h.buf)], true
}

// Items returns a copy of the results in chronological order (oldest first).
func (h *HealthHistory) Items() []HealthCheckResult {
	out := make([]HealthCheckResult, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Latencies returns the successful latencies of one layer in chronological
// order. Valid layers: "ping", "http". Failed checks are skipped.
func (h *HealthHistory) Latencies(layer string) []float64 {
	var out []float64
	for _, r := range h.Items() {
		switch layer {
		case "ping":
			if r.PingSuccess && r.PingLatencyMs != nil {
				out = append(out, *r.PingLatencyMs)
			}
		case "http":
			if r.HTTPSuccess && r.HTTPLatencyMs != nil {
				out = append(out, *r.HTTPLatencyMs)
			}
		}
	}
	return out
}
