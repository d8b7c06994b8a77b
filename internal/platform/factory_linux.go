//go:build linux
// +build linux

package platform

func newLocalProbe() Probe {
	return newLinuxProbe()
}
