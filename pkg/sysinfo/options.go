package sysinfo

// Options configures a SystemInfo.
type Options struct {
	// Logger receives Debug records for each resolved fact and Warn
	// records for probe failures. If nil, nothing is logged.
	Logger Logger

	// Remote queries a Linux host over SSH instead of the local machine.
	Remote *RemoteConfig
}

// DefaultOptions returns Options for the local machine with logging off.
func DefaultOptions() Options {
	return Options{Logger: NopLogger()}
}
