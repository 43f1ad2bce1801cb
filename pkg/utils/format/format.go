// Package format provides small display helpers for command line output.
package format

import (
	"fmt"
	"time"
)

// Elapsed formats a duration as a human-readable string
// (e.g. "3.2 seconds", "1.5 minutes", "2.0 hours").
func Elapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1f seconds", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}

// Count renders a count with its noun, pluralizing with a plain "s"
// (e.g. "1 video", "5 videos").
func Count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
