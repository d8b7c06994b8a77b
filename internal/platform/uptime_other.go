//go:build !linux && !windows && !darwin && !freebsd && !openbsd && !netbsd && !dragonfly
// +build !linux,!windows,!darwin,!freebsd,!openbsd,!netbsd,!dragonfly

package platform

import "time"

// Uptime is not supported on this platform.
func Uptime() (time.Duration, error) {
	return 0, unsupported(FactUptime)
}
