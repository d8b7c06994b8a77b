//go:build darwin
// +build darwin

package platform

func newLocalProbe() Probe {
	return newDarwinProbe()
}
