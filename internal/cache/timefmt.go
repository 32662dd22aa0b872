package cache

import (
	"fmt"
	"time"
)

// relativeLabel renders a message timestamp the way the sidebar shows it:
// minutes, hours or days for the recent past, a short date beyond a week.
func relativeLabel(ts int64, now time.Time) string {
	if ts <= 0 {
		return ""
	}
	at := time.Unix(ts, 0)
	diff := now.Sub(at)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(diff.Hours()/24))
	default:
		return at.Format("Jan 2, 2006")
	}
}

// clockLabel renders a message timestamp as thread time, e.g. "10:30 AM"
func clockLabel(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).Format("3:04 PM")
}
