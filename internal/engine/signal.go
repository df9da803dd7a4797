package engine

import "github.com/dm/cmm-go/internal/model"

// DownstreamPowerSeverity grades a downstream receive level by its distance
// from 0 dBmV.
func DownstreamPowerSeverity(dbmv float64) model.AdvisorySeverity {
	if dbmv < 0 {
		dbmv = -dbmv
	}
	switch {
	case dbmv > dsPowerCritical:
		return model.SeverityCritical
	case dbmv > dsPowerWarn:
		return model.SeverityWarning
	}
	return model.SeverityNormal
}

// SNRSeverity grades a downstream SNR. 0 means not reported and is normal.
func SNRSeverity(db float64) model.AdvisorySeverity {
	switch {
	case db <= 0:
		return model.SeverityNormal
	case db < dsSNRCritical:
		return model.SeverityCritical
	case db < dsSNRWarn:
		return model.SeverityWarning
	}
	return model.SeverityNormal
}

// UpstreamPowerSeverity grades an upstream transmit level. Both a high and a
// low level are warnings; only the high side turns critical.
func UpstreamPowerSeverity(dbmv float64) model.AdvisorySeverity {
	switch {
	case dbmv > usPowerCritical:
		return model.SeverityCritical
	case dbmv > usPowerWarn:
		return model.SeverityWarning
	case dbmv > 0 && dbmv < usPowerLowWarn:
		return model.SeverityWarning
	}
	return model.SeverityNormal
}
