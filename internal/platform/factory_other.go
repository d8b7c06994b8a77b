//go:build !linux && !windows && !darwin && !freebsd && !openbsd && !netbsd && !dragonfly
// +build !linux,!windows,!darwin,!freebsd,!openbsd,!netbsd,!dragonfly

package platform

import "runtime"

func newLocalProbe() Probe {
	return unsupportedProbe{name: runtime.GOOS}
}
