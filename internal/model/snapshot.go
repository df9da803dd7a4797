package model

import "time"

// ConnectionStatus classifies the outcome of one fetch.
type ConnectionStatus string

const (
	// StatusOnline means at least one channel was parsed.
	StatusOnline ConnectionStatus = "online"
	// StatusOffline means the modem answered but no channels could be read.
	StatusOffline ConnectionStatus = "offline"
	// StatusUnreachable means no endpoint answered or the transport failed.
	StatusUnreachable ConnectionStatus = "unreachable"
)

// SystemInfoPrefix namespaces system info keys so they cannot collide with
// other data sources.
const SystemInfoPrefix = "cable_modem_"

// Snapshot is the normalized result of a single fetch.
type Snapshot struct {
	ConnectionStatus ConnectionStatus  `json:"connection_status"`
	Downstream       []ChannelReading  `json:"downstream"`
	Upstream         []ChannelReading  `json:"upstream"`
	TotalCorrected   int64             `json:"total_corrected"`
	TotalUncorrected int64             `json:"total_uncorrected"`
	DownstreamCount  int               `json:"downstream_count"`
	UpstreamCount    int               `json:"upstream_count"`
	SystemInfo       map[string]string `json:"system_info"`
	FetchedAt        time.Time         `json:"fetched_at"`
}

// EmptySnapshot returns a snapshot with no channels and the given status.
func EmptySnapshot(status ConnectionStatus, at time.Time) *Snapshot {
	return &Snapshot{
		ConnectionStatus: status,
		Downstream:       []ChannelReading{},
		Upstream:         []ChannelReading{},
		SystemInfo:       map[string]string{},
		FetchedAt:        at,
	}
}

// DetectionInfo identifies the parser bound to a modem session and the URL
// that produced a usable page.
type DetectionInfo struct {
	ModemName     string `json:"modem_name"`
	Manufacturer  string `json:"manufacturer"`
	SuccessfulURL string `json:"successful_url"`
}

// PollResult is the outcome of one scheduler cycle: the fetch result and the
// health check that ran alongside it.
type PollResult struct {
	Snapshot *Snapshot
	Health   *HealthCheckResult
	Err      error
	At       time.Time
}

// Success reports whether the fetch half of the cycle produced data.
func (r PollResult) Success() bool {
	return r.Err == nil && r.Snapshot != nil
}
