package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// ToRemote converts the [remote] section into facade options. It returns
// nil when no host is configured. The password, if any, is read from the
// variable named by PasswordEnv.
func (r RemoteConfig) ToRemote(getenv func(string) string) (*sysinfo.RemoteConfig, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}

	out := &sysinfo.RemoteConfig{
		Host:                  r.Host,
		Port:                  r.Port,
		User:                  r.User,
		KnownHostsPath:        r.KnownHosts,
		InsecureIgnoreHostKey: r.Insecure,
	}
	if r.Timeout != "" {
		d, err := cast.ToDurationE(r.Timeout)
		if err != nil {
			return nil, fmt.Errorf("remote.timeout: %w", err)
		}
		out.CommandTimeout = d
	}

	switch {
	case r.PasswordEnv != "":
		password := getenv(r.PasswordEnv)
		if password == "" {
			return nil, fmt.Errorf("remote.password_env: %s is not set", r.PasswordEnv)
		}
		out.AuthMethod = sysinfo.PasswordAuth{Password: password}
	case r.IdentityFile != "":
		out.AuthMethod = sysinfo.KeyAuth{PrivateKeyPath: r.IdentityFile}
	}
	return out, nil
}
