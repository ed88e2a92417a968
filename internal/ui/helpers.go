package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate shortens a string to limit runes, appending an ellipsis.
func truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// humanizeDuration renders a coarse "time ago" suffix.
func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

// padRight pads a string with spaces to width runes, truncating if longer.
func padRight(value string, width int) string {
	runes := []rune(value)
	if len(runes) >= width {
		return truncate(value, width)
	}
	return value + strings.Repeat(" ", width-len(runes))
}
