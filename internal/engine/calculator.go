package engine

import (
	"time"

	"github.com/dm/cmm-go/internal/model"
)

const (
	minTimeDiffSeconds = 1.0
	// Above this the counters wrapped or the modem reported garbage.
	maxErrorsPerMin = 10_000_000.0
)

// clampRate returns 0 if r exceeds maxErrorsPerMin, otherwise r.
func clampRate(r float64) float64 {
	if r > maxErrorsPerMin {
		return 0
	}
	return r
}

// maxFloat64 returns the larger of a and b.
func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// CalcErrorRates computes corrected and uncorrected codeword error rates from
// the delta between two consecutive snapshots.
//
// Returns zero ErrorRates when:
//   - prev or curr is nil (no baseline)
//   - either snapshot is not online (totals are meaningless without channels)
//   - elapsed < minTimeDiffSeconds
//
// Counters reset when the modem reboots; a negative delta counts as zero.
func CalcErrorRates(prev, curr *model.Snapshot, elapsed time.Duration) model.ErrorRates {
	if prev == nil || curr == nil || elapsed.Seconds() < minTimeDiffSeconds {
		return model.ErrorRates{}
	}
	if prev.ConnectionStatus != model.StatusOnline || curr.ConnectionStatus != model.StatusOnline {
		return model.ErrorRates{}
	}

	minutes := elapsed.Minutes()
	corrected := maxFloat64(0, float64(curr.TotalCorrected-prev.TotalCorrected))
	uncorrected := maxFloat64(0, float64(curr.TotalUncorrected-prev.TotalUncorrected))

	return model.ErrorRates{
		CorrectedPerMin:   clampRate(corrected / minutes),
		UncorrectedPerMin: clampRate(uncorrected / minutes),
	}
}
