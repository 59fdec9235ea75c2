package display

import (
	"fmt"
	"strings"
	"time"
)

// TimestampFormat is the standard timestamp format for CLI output.
const TimestampFormat = "2006-01-02 15:04:05"

// SeparatorLine divides sections of output.
var SeparatorLine = strings.Repeat("─", 60)

// KeyValue formats a key-value pair aligned to a 12-char key column.
func KeyValue(key, value string) string {
	return fmt.Sprintf("  %-12s %s\n", key+":", value)
}

// RelativeTime formats t relative to now.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hr ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d day ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// ShortHash returns the first 8 characters of a commit hash.
func ShortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
