//go:build linux
// +build linux

package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func (p *linuxProbe) OS() (OSInfo, error) {
	for _, path := range p.osReleasePaths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return OSInfo{}, classifyIOError(FactOS, err)
		}
		info, err := parseOSRelease(string(data))
		if err != nil {
			return OSInfo{}, parseFailure(FactOS, "%s: %v", path, err)
		}
		return info, nil
	}

	// No os-release: fall back to what the kernel reports.
	sysname, release, err := p.uname()
	if err != nil {
		return OSInfo{}, probeFailure(FactOS, CodeAPIUnavailable, err)
	}
	return OSInfo{Name: sysname, Version: release, ID: strings.ToLower(sysname)}, nil
}

func (p *linuxProbe) KernelVersion() (string, error) {
	_, release, err := p.uname()
	if err != nil {
		return "", probeFailure(FactKernelVersion, CodeAPIUnavailable, err)
	}
	if release == "" {
		return "", parseFailure(FactKernelVersion, "uname returned an empty release")
	}
	return release, nil
}

func (p *linuxProbe) Host() (string, error) {
	var permErr error
	for _, attr := range []string{"product_family", "product_name"} {
		value, err := readTrimmed(filepath.Join(p.dmiPath, attr))
		switch {
		case errors.Is(err, fs.ErrPermission):
			permErr = err
			continue
		case err != nil:
			continue
		}
		if value == "" || placeholderDMIValues[strings.ToLower(value)] {
			continue
		}
		return value, nil
	}
	if permErr != nil {
		return "", classifyIOError(FactHost, permErr)
	}
	return "", unavailable(FactHost, "no DMI product information under %s", p.dmiPath)
}
