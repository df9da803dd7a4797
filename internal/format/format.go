package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotAvailable is rendered for values the modem or health check did not report.
const NotAvailable = "---"

// FormatLatency formats a latency value in milliseconds.
// Values >= 1000 ms are shown as seconds with 2 decimal places.
// Values < 1000 ms are shown as ms with 1 decimal place.
// ok=false or a negative value returns NotAvailable.
func FormatLatency(ms float64, ok bool) string {
	if !ok || ms < 0 {
		return NotAvailable
	}
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.1f ms", ms)
}

// FormatFrequency formats a frequency in Hz as MHz with one decimal place.
// Example: 795000000 → "795.0 MHz". Zero means the modem did not report it.
func FormatFrequency(hz float64) string {
	if hz <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f MHz", hz/1e6)
}

// FormatPower formats a signal level in dBmV with an explicit sign.
// Example: 7.2 → "+7.2 dBmV", -3 → "-3.0 dBmV".
func FormatPower(dbmv float64) string {
	return fmt.Sprintf("%+.1f dBmV", dbmv)
}

// FormatSNR formats a signal-to-noise ratio in dB.
func FormatSNR(db float64) string {
	if db <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%.1f dB", db)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatInterval formats a poll interval compactly, e.g. "10s", "10m" or "1m30s".
func FormatInterval(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	d = d.Round(time.Second)
	mins := int(d / time.Minute)
	secs := int((d % time.Minute) / time.Second)
	switch {
	case mins == 0:
		return fmt.Sprintf("%ds", secs)
	case secs == 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
