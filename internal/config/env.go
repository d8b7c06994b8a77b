package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and $VAR references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv replaces environment variable references in s. ${VAR:-default}
// falls back to default when VAR is unset or empty; other unset variables
// expand to "".
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") {
			inner := match[2 : len(match)-1]
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if val := os.Getenv(name); val != "" {
					return val
				}
				return def
			}
			return os.Getenv(inner)
		}
		return os.Getenv(match[1:])
	})
}

// ExpandEnvConfig expands environment references in every free-form string
// of cfg: file paths, the remote host and user, and the fact list.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	for i, fact := range cfg.Display.Facts {
		cfg.Display.Facts[i] = ExpandEnv(fact)
	}
	cfg.Lua.Script = ExpandEnv(cfg.Lua.Script)
	cfg.Remote.Host = ExpandEnv(cfg.Remote.Host)
	cfg.Remote.User = ExpandEnv(cfg.Remote.User)
	cfg.Remote.IdentityFile = ExpandEnv(cfg.Remote.IdentityFile)
	cfg.Remote.KnownHosts = ExpandEnv(cfg.Remote.KnownHosts)
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnvOverrides applies SYSINFO_* variables on top of cfg:
//
//	SYSINFO_JSON            bool
//	SYSINFO_BOX             bool
//	SYSINFO_FACTS           comma-separated fact list
//	SYSINFO_LOG_LEVEL       debug|info|warn|error
//	SYSINFO_LOG_FORMAT      text|json
//	SYSINFO_LUA_SCRIPT      path
//	SYSINFO_REMOTE_HOST     host or ssh alias
//	SYSINFO_REMOTE_PORT     int
//	SYSINFO_REMOTE_USER     string
//	SYSINFO_REMOTE_TIMEOUT  duration
//	SYSINFO_REMOTE_INSECURE bool
//
// A value that does not convert is an error naming the variable.
func ApplyEnvOverrides(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		return lookup(envOverridePrefix + name)
	}

	var errs []string
	setBool := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envOverridePrefix, name, err))
				return
			}
			*dst = b
		}
	}
	setString := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	setBool("JSON", &cfg.Display.JSON)
	setBool("BOX", &cfg.Display.Box)
	setBool("REMOTE_INSECURE", &cfg.Remote.Insecure)
	setString("LOG_LEVEL", &cfg.Logging.Level)
	setString("LOG_FORMAT", &cfg.Logging.Format)
	setString("LUA_SCRIPT", &cfg.Lua.Script)
	setString("REMOTE_HOST", &cfg.Remote.Host)
	setString("REMOTE_USER", &cfg.Remote.User)

	if v, ok := get("FACTS"); ok {
		cfg.Display.Facts = splitList(v)
	}
	if v, ok := get("REMOTE_PORT"); ok {
		port, err := cast.ToIntE(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sREMOTE_PORT: %v", envOverridePrefix, err))
		} else {
			cfg.Remote.Port = port
		}
	}
	if v, ok := get("REMOTE_TIMEOUT"); ok {
		if _, err := cast.ToDurationE(v); err != nil {
			errs = append(errs, fmt.Sprintf("%sREMOTE_TIMEOUT: %v", envOverridePrefix, err))
		} else {
			cfg.Remote.Timeout = v
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
