// Package config loads the sysinfo command's TOML configuration, with .env
// files, ${VAR} expansion and SYSINFO_* environment overrides.
package config

// Config is the complete configuration of the sysinfo command.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Logging LoggingConfig `toml:"logging"`
	Lua     LuaConfig     `toml:"lua"`
	Remote  RemoteConfig  `toml:"remote"`
}

// DisplayConfig selects what is printed and how.
type DisplayConfig struct {
	// Facts lists the facts to print in order. Empty means all of them.
	Facts []string `toml:"facts"`
	// JSON prints one JSON object instead of text.
	JSON bool `toml:"json"`
	// Box draws a border around the text output.
	Box bool `toml:"box"`
}

// LoggingConfig configures diagnostic logging to stderr.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

// LuaConfig configures an optional script run against the facts.
type LuaConfig struct {
	Script      string `toml:"script"`
	CPULimit    uint64 `toml:"cpu_limit"`
	MemoryLimit uint64 `toml:"memory_limit"`
}

// RemoteConfig describes a Linux host queried over SSH. Host may be an
// alias from ~/.ssh/config.
type RemoteConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	IdentityFile string `toml:"identity_file"`
	// PasswordEnv names the environment variable holding the password.
	PasswordEnv string `toml:"password_env"`
	KnownHosts  string `toml:"known_hosts"`
	Insecure    bool   `toml:"insecure"`
	// Timeout is a Go duration string such as "5s" bounding each command.
	Timeout string `toml:"timeout"`
}

// Enabled reports whether a remote host is configured.
func (r RemoteConfig) Enabled() bool {
	return r.Host != ""
}
