package format

import (
	"strconv"
	"strings"
)

// ExtractInt pulls an integer out of noisy modem text such as "12 dBmV" or
// "1,024". Everything except digits and sign characters is dropped before
// parsing. Text that leaves nothing parseable yields 0.
func ExtractInt(text string) int64 {
	cleaned := keep(text, "-+")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ExtractCount is ExtractInt for counters that cannot be negative, such as
// codeword error totals. Negative results are clamped to 0.
func ExtractCount(text string) int64 {
	n := ExtractInt(text)
	if n < 0 {
		return 0
	}
	return n
}

// ExtractFloat pulls a float out of noisy modem text such as "7.2 dBmV",
// "795000000 Hz" or "-3.0". Everything except digits, sign characters and
// the decimal point is dropped before parsing. Unparseable text yields 0.0.
func ExtractFloat(text string) float64 {
	cleaned := keep(text, "-+.")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// keep returns text with everything but ASCII digits and the given extra
// characters removed.
func keep(text, extra string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= '0' && r <= '9') || strings.ContainsRune(extra, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
