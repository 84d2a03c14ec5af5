package trial

import (
	"fmt"
	"time"
)

// Countdown renders the short banner form of the remaining trial time:
// "5 days", "1 day", or "Last day!" once under a day remains.
func Countdown(remaining time.Duration) string {
	days := int(remaining.Hours()) / 24
	if days > 0 {
		return fmt.Sprintf("%d %s", days, plural("day", days))
	}
	return "Last day!"
}

// DetailedCountdown renders the long form shown alongside the banner:
// "2 days 4 hours remaining", "5 hours 12 minutes remaining", "Last day!".
func DetailedCountdown(remaining time.Duration) string {
	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d %s %d %s remaining",
			days, plural("day", days), hours, plural("hour", hours))
	case hours > 0:
		return fmt.Sprintf("%d %s %d %s remaining",
			hours, plural("hour", hours), minutes, plural("minute", minutes))
	default:
		return "Last day!"
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
