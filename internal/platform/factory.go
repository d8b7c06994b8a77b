package platform

import (
	"context"
	"runtime"
)

// NewProbe returns the Probe for the OS this binary was built for.
// Platforms without a probe get one that reports every fact as unsupported.
func NewProbe() Probe {
	return newLocalProbe()
}

// NewProbeForOS returns the local Probe when goos is the running OS and a
// Probe that reports every fact as unsupported otherwise.
func NewProbeForOS(goos string) Probe {
	if goos == runtime.GOOS {
		return newLocalProbe()
	}
	return unsupportedProbe{name: goos}
}

// NewRemoteProbe connects to a Linux host over SSH and returns a Probe that
// answers queries by running shell commands there.
func NewRemoteProbe(ctx context.Context, config RemoteConfig) (Probe, error) {
	p, err := newSSHProbe(config)
	if err != nil {
		return nil, err
	}
	if err := p.connect(ctx); err != nil {
		return nil, err
	}
	return p, nil
}
