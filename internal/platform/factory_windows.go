//go:build windows
// +build windows

package platform

func newLocalProbe() Probe {
	return newWindowsProbe()
}
