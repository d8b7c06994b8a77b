package config

const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultLuaCPU       = 10_000_000
	DefaultLuaMemory    = 50 * 1024 * 1024
	DefaultRemoteWait   = "5s"
	envOverridePrefix   = "SYSINFO_"
	dotEnvFilename      = ".env"
	maxPort             = 65535
	defaultConfigName   = "sysinfo.toml"
	defaultConfigSubdir = "sysinfo"
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Lua: LuaConfig{
			CPULimit:    DefaultLuaCPU,
			MemoryLimit: DefaultLuaMemory,
		},
		Remote: RemoteConfig{
			Timeout: DefaultRemoteWait,
		},
	}
}
