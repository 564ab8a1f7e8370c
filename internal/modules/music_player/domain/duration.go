package domain

import (
	"fmt"
	"time"
)

const liveLabel = "LIVE"

// FormatDuration formats d as zero-padded HH:MM:SS. Negative durations format as 00:00:00.
// Hours are always present, so 59s is "00:00:59".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatRemaining formats total minus elapsed with a trailing "left" marker.
func FormatRemaining(total, elapsed time.Duration) string {
	return FormatDuration(total-elapsed) + " left"
}
