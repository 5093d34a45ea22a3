package locate

import "fmt"

// FormatTimestamp renders seconds as MM:SS.mmm, or HH:MM:SS.mmm once the
// value reaches an hour. Negative input clamps to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	millis := int64(seconds*1000 + 0.5)
	h := millis / 3_600_000
	millis -= h * 3_600_000
	m := millis / 60_000
	millis -= m * 60_000
	s := millis / 1000
	ms := millis % 1000

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, ms)
}
