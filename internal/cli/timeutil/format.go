// Package timeutil formats server-reported times for CLI display.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is how absolute times are displayed in CLI output.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatUptime renders a Go duration string (as reported by the health
// endpoint, e.g. "72h30m15s") as "3d 0h 30m 15s". The input is returned
// unchanged if it does not parse.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatTime renders an RFC3339 timestamp in local time. The input is
// returned unchanged if it does not parse.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(LocalTimeFormat)
}
