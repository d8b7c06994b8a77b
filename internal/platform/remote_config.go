package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/spf13/cast"
)

// RemoteConfig describes an SSH connection to a Linux host.
type RemoteConfig struct {
	// Host is a hostname, an IP address or an alias from ~/.ssh/config.
	Host string

	// Port is the SSH port (default: 22).
	Port int

	// User is the SSH username. Taken from ~/.ssh/config or $USER if empty.
	User string

	// AuthMethod specifies how to authenticate. When nil, the agent is used
	// if SSH_AUTH_SOCK is set, else the IdentityFile from ~/.ssh/config.
	AuthMethod AuthMethod

	// KnownHostsPath is the known_hosts file used to verify the host key
	// (default: ~/.ssh/known_hosts).
	KnownHostsPath string

	// InsecureIgnoreHostKey disables host key verification.
	InsecureIgnoreHostKey bool

	// ConnectTimeout bounds the TCP dial and handshake (default: 10s).
	ConnectTimeout time.Duration

	// CommandTimeout is the timeout for individual commands (default: 5s).
	CommandTimeout time.Duration

	// SSHConfigPath overrides ~/.ssh/config for alias resolution.
	SSHConfigPath string
}

// AuthMethod defines SSH authentication methods.
type AuthMethod interface {
	isAuthMethod()
}

// PasswordAuth authenticates using a password.
type PasswordAuth struct {
	Password string
}

func (PasswordAuth) isAuthMethod() {}

// KeyAuth authenticates using a private key file.
type KeyAuth struct {
	PrivateKeyPath string
	Passphrase     string
}

func (KeyAuth) isAuthMethod() {}

// AgentAuth authenticates through the agent listening on SSH_AUTH_SOCK.
type AgentAuth struct{}

func (AgentAuth) isAuthMethod() {}

const (
	defaultSSHPort        = 22
	defaultConnectTimeout = 10 * time.Second
	defaultCommandTimeout = 5 * time.Second
)

// sshHostSettings holds the ~/.ssh/config values that apply to one alias.
type sshHostSettings struct {
	HostName       string
	User           string
	Port           int
	IdentityFile   string
	ConnectTimeout time.Duration
}

// lookupSSHConfig reads the settings for alias from an ssh_config stream.
// Unset keys are left zero.
func lookupSSHConfig(r io.Reader, alias string) (sshHostSettings, error) {
	cfg, err := ssh_config.Decode(r)
	if err != nil {
		return sshHostSettings{}, fmt.Errorf("parsing ssh config: %w", err)
	}

	get := func(key string) string {
		value, _ := cfg.Get(alias, key)
		return value
	}

	settings := sshHostSettings{
		HostName:     get("HostName"),
		User:         get("User"),
		IdentityFile: expandHome(get("IdentityFile")),
	}
	if port := get("Port"); port != "" {
		settings.Port = cast.ToInt(port)
	}
	if timeout := get("ConnectTimeout"); timeout != "" {
		settings.ConnectTimeout = cast.ToDuration(timeout) * time.Second
	}
	return settings, nil
}

// resolveRemoteConfig fills unset fields from the ssh config settings and
// the defaults.
func resolveRemoteConfig(config RemoteConfig, settings sshHostSettings) RemoteConfig {
	if settings.HostName != "" {
		config.Host = settings.HostName
	}
	if config.User == "" {
		config.User = settings.User
	}
	if config.User == "" {
		config.User = os.Getenv("USER")
	}
	if config.Port == 0 {
		config.Port = settings.Port
	}
	if config.Port == 0 {
		config.Port = defaultSSHPort
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = settings.ConnectTimeout
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = defaultConnectTimeout
	}
	if config.CommandTimeout == 0 {
		config.CommandTimeout = defaultCommandTimeout
	}
	if config.AuthMethod == nil {
		switch {
		case os.Getenv("SSH_AUTH_SOCK") != "":
			config.AuthMethod = AgentAuth{}
		case settings.IdentityFile != "":
			config.AuthMethod = KeyAuth{PrivateKeyPath: settings.IdentityFile}
		}
	}
	if config.KnownHostsPath == "" {
		config.KnownHostsPath = expandHome("~/.ssh/known_hosts")
	}
	return config
}

// loadSSHHostSettings reads ~/.ssh/config (or path). A missing file yields
// empty settings.
func loadSSHHostSettings(path, alias string) (sshHostSettings, error) {
	if path == "" {
		path = expandHome("~/.ssh/config")
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sshHostSettings{}, nil
		}
		return sshHostSettings{}, fmt.Errorf("opening ssh config %s: %w", path, err)
	}
	defer f.Close()
	return lookupSSHConfig(f, alias)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
