// Package main provides the sysinfo command, which prints facts about the
// local machine or a remote Linux host as text, a box, or JSON, or hands
// them to a Lua script.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/opd-ai/go-sysinfo/internal/config"
	"github.com/opd-ai/go-sysinfo/internal/lua"
	"github.com/opd-ai/go-sysinfo/internal/profiling"
	"github.com/opd-ai/go-sysinfo/internal/ui"
	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

// Version is the current version of sysinfo.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the parsed command-line flags.
type options struct {
	configPath string
	json       bool
	box        bool
	luaScript  string
	remoteHost string
	debug      bool
	version    bool
	cpuProfile string
	memProfile string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("sysinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "c", "", "Path to TOML configuration file")
	fs.BoolVar(&opts.json, "json", false, "Print facts as JSON")
	fs.BoolVar(&opts.box, "box", false, "Draw a box around text output")
	fs.StringVar(&opts.luaScript, "lua", "", "Run a Lua script with the sysinfo table instead of printing")
	fs.StringVar(&opts.remoteHost, "remote", "", "Query a Linux host over SSH (host, user@host or ssh_config alias)")
	fs.BoolVar(&opts.debug, "debug", false, "Log probe activity to stderr")
	fs.BoolVar(&opts.version, "v", false, "Print version and exit")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	fs.StringVar(&opts.memProfile, "memprofile", "", "Write memory profile to file")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "sysinfo version %s\n", Version)
		return 0
	}

	loaded, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	cfg := applyFlags(loaded.Config, opts)

	logger, err := newLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	for _, w := range loaded.Warnings {
		logger.Warn("configuration", "field", w.Field, "problem", w.Message)
	}

	prof := profiling.Config{CPUProfilePath: opts.cpuProfile, MemProfilePath: opts.memProfile}
	err = profiling.Run(prof, func() error {
		return report(cfg, logger, stdout)
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads path, or the per-user default file when path is empty
// and that file exists.
func loadConfig(path string) (*config.Loaded, error) {
	if path == "" {
		if def, ok := config.DefaultPath(); ok {
			path = def
		}
	}
	return config.Load(path)
}

// applyFlags layers command-line flags over the file and environment.
func applyFlags(cfg config.Config, opts options) config.Config {
	if opts.json {
		cfg.Display.JSON = true
	}
	if opts.box {
		cfg.Display.Box = true
	}
	if opts.luaScript != "" {
		cfg.Lua.Script = opts.luaScript
	}
	if opts.remoteHost != "" {
		cfg.Remote.Host = opts.remoteHost
	}
	if opts.debug {
		cfg.Logging.Level = "debug"
	}
	return cfg
}

func newLogger(cfg config.LoggingConfig, w io.Writer) (sysinfo.Logger, error) {
	level, err := sysinfo.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if sysinfo.LogFormat(cfg.Format) == sysinfo.LogFormatJSON {
		return sysinfo.JSONLogger(w, level), nil
	}
	return sysinfo.NewLogger(w, level, sysinfo.LogFormatText), nil
}

func report(cfg config.Config, logger sysinfo.Logger, stdout io.Writer) error {
	remote, err := cfg.Remote.ToRemote(os.Getenv)
	if err != nil {
		return err
	}

	info, err := sysinfo.NewWithOptions(sysinfo.Options{Logger: logger, Remote: remote})
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer info.Close()
	logger.Debug("probe ready", "platform", info.Platform())

	if cfg.Lua.Script != "" {
		return runScript(cfg.Lua, info, stdout)
	}

	facts, err := ui.ParseFacts(cfg.Display.Facts)
	if err != nil {
		return err
	}
	if remote != nil {
		// Uptime is read from the local clock only.
		facts = withoutFact(facts, sysinfo.FactUptime)
	}
	rep := ui.Collect(info, sysinfo.Uptime, facts)

	if cfg.Display.JSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.Values())
	}
	return ui.WriteText(stdout, title(info, remote), rep.Lines(), cfg.Display.Box)
}

func withoutFact(facts []sysinfo.Fact, drop sysinfo.Fact) []sysinfo.Fact {
	out := facts[:0:0]
	for _, f := range facts {
		if f != drop {
			out = append(out, f)
		}
	}
	return out
}

func title(info *sysinfo.SystemInfo, remote *sysinfo.RemoteConfig) string {
	if remote != nil {
		return remote.Host
	}
	if name, err := os.Hostname(); err == nil {
		return name
	}
	return info.Platform()
}

func runScript(cfg config.LuaConfig, info *sysinfo.SystemInfo, stdout io.Writer) error {
	rtCfg := lua.DefaultConfig()
	rtCfg.CPULimit = cfg.CPULimit
	rtCfg.MemoryLimit = cfg.MemoryLimit
	rtCfg.Stdout = stdout

	runtime, err := lua.New(rtCfg)
	if err != nil {
		return err
	}
	defer runtime.Close()

	if _, err := lua.Register(runtime, info); err != nil {
		return err
	}
	if _, err := runtime.ExecuteFile(cfg.Script); err != nil {
		return fmt.Errorf("running %s: %w", cfg.Script, err)
	}
	return nil
}
