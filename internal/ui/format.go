// Package ui renders system facts for the sysinfo command as aligned text,
// optionally boxed, or as JSON-ready values.
package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatBytes formats bytes to human-readable binary units (e.g., "1.5 GiB").
func FormatBytes(bytes uint64) string {
	const (
		_ = 1 << (10 * iota)
		KiB
		MiB
		GiB
		TiB
	)

	switch {
	case bytes >= TiB:
		return fmt.Sprintf("%.1f TiB", float64(bytes)/TiB)
	case bytes >= GiB:
		return fmt.Sprintf("%.1f GiB", float64(bytes)/GiB)
	case bytes >= MiB:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/MiB)
	case bytes >= KiB:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatUsage formats a used/total pair as "used / total (pct%)".
func FormatUsage(used, total uint64, pct float64) string {
	return fmt.Sprintf("%s / %s (%.0f%%)", FormatBytes(used), FormatBytes(total), pct)
}

// FormatDuration formats d as "Xd Xh Xm", dropping leading zero units.
// Durations under a minute print as seconds.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	total := int64(d / time.Minute)
	days := total / (24 * 60)
	hours := (total / 60) % 24
	mins := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", mins))
	return strings.Join(parts, " ")
}

// FormatRefresh formats a refresh rate, trimming a zero fraction.
func FormatRefresh(hz float64) string {
	if hz == float64(int64(hz)) {
		return fmt.Sprintf("%dHz", int64(hz))
	}
	return fmt.Sprintf("%.2fHz", hz)
}
