//go:build windows
// +build windows

package platform

import "time"

// Uptime returns the time since boot from GetTickCount64.
func Uptime() (time.Duration, error) {
	ms, _, _ := procGetTickCount64.Call()
	return (time.Duration(ms) * time.Millisecond).Truncate(time.Second), nil
}
