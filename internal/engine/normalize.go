package engine

import (
	"time"

	"github.com/dm/cmm-go/internal/model"
)

// Normalize turns a parser extraction into a Snapshot: totals summed over
// downstream channels, system info keys namespaced with
// model.SystemInfoPrefix, and the connection status derived from the channel
// counts.
func Normalize(raw model.RawExtraction, at time.Time) *model.Snapshot {
	snap := model.EmptySnapshot(model.StatusOffline, at)

	if raw.Downstream != nil {
		snap.Downstream = raw.Downstream
	}
	if raw.Upstream != nil {
		snap.Upstream = raw.Upstream
	}
	for _, ch := range snap.Downstream {
		snap.TotalCorrected += ch.Corrected
		snap.TotalUncorrected += ch.Uncorrected
	}
	snap.DownstreamCount = len(snap.Downstream)
	snap.UpstreamCount = len(snap.Upstream)

	for k, v := range raw.SystemInfo {
		snap.SystemInfo[model.SystemInfoPrefix+k] = v
	}

	if snap.DownstreamCount > 0 || snap.UpstreamCount > 0 {
		snap.ConnectionStatus = model.StatusOnline
	}
	return snap
}
