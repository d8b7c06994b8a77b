//go:build darwin || freebsd || openbsd || netbsd || dragonfly
// +build darwin freebsd openbsd netbsd dragonfly

package platform

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

func sysctlFact(fact Fact, name string) (string, error) {
	value, err := unix.Sysctl(name)
	if err != nil {
		return "", probeFailure(fact, CodeAPIUnavailable, fmt.Errorf("sysctl %s: %w", name, err))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", unavailable(fact, "sysctl %s is empty", name)
	}
	return value, nil
}
