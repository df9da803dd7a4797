package engine

import (
	"fmt"
	"sort"

	"github.com/dm/cmm-go/internal/model"
)

// Signal bounds for DOCSIS 3.0 SC-QAM channels as published by most cable
// operators.
const (
	dsPowerWarn     = 7.0  // |dBmV|
	dsPowerCritical = 15.0 // |dBmV|
	dsSNRWarn       = 33.0 // dB
	dsSNRCritical   = 30.0 // dB
	usPowerLowWarn  = 35.0 // dBmV
	usPowerWarn     = 51.0 // dBmV
	usPowerCritical = 54.0 // dBmV

	uncorrectedPerMinCritical = 100.0
	correctedPerMinWarn       = 1000.0
)

// CalcAdvisories derives signal and connectivity findings from the current
// snapshot and the error rates since the previous one. Results are ordered
// most severe first; an empty (non-nil) slice means nothing to report.
func CalcAdvisories(snap *model.Snapshot, rates model.ErrorRates) []model.Advisory {
	result := []model.Advisory{}
	if snap == nil {
		return result
	}

	switch snap.ConnectionStatus {
	case model.StatusUnreachable:
		return append(result, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryConnectivity,
			Title:    "Modem unreachable",
			Detail:   "No modem status page answered. Check the modem address, cabling and credentials.",
		})
	case model.StatusOffline:
		return append(result, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryConnectivity,
			Title:    "No channels locked",
			Detail:   "The modem answered but reports no downstream or upstream channels. It may be rebooting or has lost the cable signal.",
		})
	}

	result = append(result, downstreamAdvisories(snap.Downstream)...)
	result = append(result, upstreamAdvisories(snap.Upstream)...)
	result = append(result, errorRateAdvisories(rates)...)

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Severity > result[j].Severity
	})
	return result
}

func downstreamAdvisories(channels []model.ChannelReading) []model.Advisory {
	var (
		powerWarn, powerCrit []int64
		snrWarn, snrCrit     []int64
		recs                 []model.Advisory
	)
	for _, ch := range channels {
		switch DownstreamPowerSeverity(ch.Power) {
		case model.SeverityCritical:
			powerCrit = append(powerCrit, ch.ChannelID)
		case model.SeverityWarning:
			powerWarn = append(powerWarn, ch.ChannelID)
		}

		switch SNRSeverity(ch.SNR) {
		case model.SeverityCritical:
			snrCrit = append(snrCrit, ch.ChannelID)
		case model.SeverityWarning:
			snrWarn = append(snrWarn, ch.ChannelID)
		}
	}

	if len(powerCrit) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryDownstreamSignal,
			Title:    "Downstream power out of range",
			Detail:   fmt.Sprintf("Channel(s) %v receive beyond ±%.0f dBmV. Expect errors or dropped channels. Check splitters, amplifiers and connectors.", powerCrit, dsPowerCritical),
		})
	}
	if len(powerWarn) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryDownstreamSignal,
			Title:    "Downstream power marginal",
			Detail:   fmt.Sprintf("Channel(s) %v receive outside ±%.0f dBmV.", powerWarn, dsPowerWarn),
		})
	}
	if len(snrCrit) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryDownstreamSignal,
			Title:    "Downstream SNR too low",
			Detail:   fmt.Sprintf("Channel(s) %v report SNR below %.0f dB. Noise ingress is likely.", snrCrit, dsSNRCritical),
		})
	}
	if len(snrWarn) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryDownstreamSignal,
			Title:    "Downstream SNR marginal",
			Detail:   fmt.Sprintf("Channel(s) %v report SNR below %.0f dB.", snrWarn, dsSNRWarn),
		})
	}
	return recs
}

func upstreamAdvisories(channels []model.ChannelReading) []model.Advisory {
	var (
		high, crit, low []int64
		recs            []model.Advisory
	)
	for _, ch := range channels {
		switch UpstreamPowerSeverity(ch.Power) {
		case model.SeverityCritical:
			crit = append(crit, ch.ChannelID)
		case model.SeverityWarning:
			if ch.Power < usPowerLowWarn {
				low = append(low, ch.ChannelID)
			} else {
				high = append(high, ch.ChannelID)
			}
		}
	}

	if len(crit) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryUpstreamSignal,
			Title:    "Upstream power at limit",
			Detail:   fmt.Sprintf("Channel(s) %v transmit above %.0f dBmV. The modem cannot compensate for more loss.", crit, usPowerCritical),
		})
	}
	if len(high) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryUpstreamSignal,
			Title:    "Upstream power high",
			Detail:   fmt.Sprintf("Channel(s) %v transmit above %.0f dBmV.", high, usPowerWarn),
		})
	}
	if len(low) > 0 {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryUpstreamSignal,
			Title:    "Upstream power low",
			Detail:   fmt.Sprintf("Channel(s) %v transmit below %.0f dBmV.", low, usPowerLowWarn),
		})
	}
	return recs
}

func errorRateAdvisories(rates model.ErrorRates) []model.Advisory {
	var recs []model.Advisory
	switch {
	case rates.UncorrectedPerMin > uncorrectedPerMinCritical:
		recs = append(recs, model.Advisory{
			Severity: model.SeverityCritical,
			Category: model.CategoryErrors,
			Title:    "Heavy packet loss",
			Detail:   fmt.Sprintf("%.0f uncorrectable codewords per minute.", rates.UncorrectedPerMin),
		})
	case rates.UncorrectedPerMin > 0:
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryErrors,
			Title:    "Uncorrectable errors",
			Detail:   fmt.Sprintf("%.1f uncorrectable codewords per minute since the last poll.", rates.UncorrectedPerMin),
		})
	}
	if rates.CorrectedPerMin > correctedPerMinWarn {
		recs = append(recs, model.Advisory{
			Severity: model.SeverityWarning,
			Category: model.CategoryErrors,
			Title:    "High corrected error rate",
			Detail:   fmt.Sprintf("%.0f corrected codewords per minute. The line is noisy but still usable.", rates.CorrectedPerMin),
		})
	}
	return recs
}
