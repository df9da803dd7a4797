package model

// ChannelReading is one downstream or upstream RF channel as reported by the
// modem. Frequencies are in Hz, power in dBmV and SNR in dB. SNR, Corrected,
// Uncorrected and Modulation are only populated for downstream channels.
// Fields the modem reported in an unparseable form are left at zero.
type ChannelReading struct {
	ChannelID   int64   `json:"channel_id"`
	Frequency   float64 `json:"frequency"`
	Power       float64 `json:"power"`
	SNR         float64 `json:"snr,omitempty"`
	Corrected   int64   `json:"corrected,omitempty"`
	Uncorrected int64   `json:"uncorrected,omitempty"`
	Modulation  string  `json:"modulation,omitempty"`
}

// RawExtraction is what a vendor parser pulls out of a modem page before
// normalization.
type RawExtraction struct {
	Downstream []ChannelReading
	Upstream   []ChannelReading
	SystemInfo map[string]string
}
