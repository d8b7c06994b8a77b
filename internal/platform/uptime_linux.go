//go:build linux
// +build linux

package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Uptime returns the time since boot. It always queries the kernel.
func Uptime() (time.Duration, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, probeFailure(FactUptime, CodeAPIUnavailable, fmt.Errorf("sysinfo: %w", err))
	}
	return time.Duration(info.Uptime) * time.Second, nil
}
