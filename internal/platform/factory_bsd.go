//go:build freebsd || openbsd || netbsd || dragonfly
// +build freebsd openbsd netbsd dragonfly

package platform

func newLocalProbe() Probe {
	return newBSDProbe()
}
