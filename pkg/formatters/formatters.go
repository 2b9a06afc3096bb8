// Package formatters renders byte counts and durations for human-facing
// output (console, logfile, dashboard).
package formatters

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders n bytes as a human-readable size, e.g. "1.2 MB".
func FormatBytes(n int64) string {
	return humanize.Bytes(uint64(max64(n, 0)))
}

// FormatDuration renders d at second resolution for short runs and
// rounds to the nearest minute for runs over a minute, e.g. "42s" or
// "3m".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Round(time.Second).Seconds()))
	}

	return fmt.Sprintf("%dm", int(d.Round(time.Minute).Minutes()))
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}
