//go:build darwin || freebsd || openbsd || netbsd || dragonfly
// +build darwin freebsd openbsd netbsd dragonfly

package platform

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Uptime returns the time since boot, derived from kern.boottime.
func Uptime() (time.Duration, error) {
	tv, err := unix.SysctlTimeval("kern.boottime")
	if err != nil {
		return 0, probeFailure(FactUptime, CodeAPIUnavailable, fmt.Errorf("sysctl kern.boottime: %w", err))
	}
	boot := time.Unix(int64(tv.Sec), int64(tv.Usec)*int64(time.Microsecond))
	return time.Since(boot).Truncate(time.Second), nil
}
