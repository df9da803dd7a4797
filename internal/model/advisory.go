package model

// AdvisorySeverity indicates the urgency level of an advisory.
type AdvisorySeverity int

const (
	SeverityNormal AdvisorySeverity = iota
	SeverityWarning
	SeverityCritical
)

func (s AdvisorySeverity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "normal"
	}
}

func (s AdvisorySeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AdvisoryCategory groups related advisories.
type AdvisoryCategory int

const (
	CategoryConnectivity AdvisoryCategory = iota
	CategoryDownstreamSignal
	CategoryUpstreamSignal
	CategoryErrors
)

func (c AdvisoryCategory) String() string {
	switch c {
	case CategoryConnectivity:
		return "connectivity"
	case CategoryDownstreamSignal:
		return "downstream_signal"
	case CategoryUpstreamSignal:
		return "upstream_signal"
	case CategoryErrors:
		return "errors"
	default:
		return "other"
	}
}

func (c AdvisoryCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Advisory is a single actionable finding derived from modem state.
type Advisory struct {
	Severity AdvisorySeverity `json:"severity"`
	Category AdvisoryCategory `json:"category"`
	Title    string           `json:"title"`
	Detail   string           `json:"detail,omitempty"`
}

// ErrorRates are codeword error rates computed from two consecutive
// snapshots, per minute.
type ErrorRates struct {
	CorrectedPerMin   float64
	UncorrectedPerMin float64
}
