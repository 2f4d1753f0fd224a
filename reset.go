package tokengate

import (
	"fmt"
	"time"
)

// FormatReset renders the time until a window reset as a short human
// countdown: "2h 5m", "45m", or "now" once the reset has passed.
// Negative durations are floored to "now".
func FormatReset(until time.Duration) string {
	if until <= 0 {
		return "now"
	}

	hours := int(until / time.Hour)
	minutes := int((until % time.Hour) / time.Minute)

	if hours == 0 && minutes == 0 {
		// Sub-minute remainder still rounds up to a minute so the caller
		// never sees "now" while the limit is still in force.
		minutes = 1
	}
	if hours == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
