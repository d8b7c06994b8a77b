package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Loaded is a parsed configuration together with the non-fatal problems
// found while loading it.
type Loaded struct {
	Config   Config
	Path     string
	Warnings []ValidationError
}

// Parser loads sysinfo configuration files.
type Parser struct {
	lookup     LookupFunc
	loadDotEnv bool
}

// NewParser creates a Parser reading overrides from the process
// environment and loading .env files next to the config and in the
// working directory.
func NewParser() *Parser {
	return &Parser{lookup: os.LookupEnv, loadDotEnv: true}
}

// WithLookup replaces the environment lookup used for SYSINFO_* overrides.
// .env loading is disabled so the lookup is the only source.
func (p *Parser) WithLookup(lookup LookupFunc) *Parser {
	p.lookup = lookup
	p.loadDotEnv = false
	return p
}

// ParseFile reads and parses the TOML file at path. An empty path yields
// DefaultConfig with environment overrides applied.
func (p *Parser) ParseFile(path string) (*Loaded, error) {
	if path == "" {
		if p.loadDotEnv {
			if err := loadDotEnv(dotEnvFilename); err != nil {
				return nil, err
			}
		}
		return p.finish(DefaultConfig(), toml.MetaData{}, "")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	defer f.Close()

	if p.loadDotEnv {
		if err := loadDotEnv(filepath.Join(filepath.Dir(path), dotEnvFilename), dotEnvFilename); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	meta, err := toml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return p.finish(cfg, meta, path)
}

// Parse parses TOML content from r.
func (p *Parser) Parse(r io.Reader) (*Loaded, error) {
	cfg := DefaultConfig()
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return p.finish(cfg, meta, "")
}

func (p *Parser) finish(cfg Config, meta toml.MetaData, path string) (*Loaded, error) {
	ExpandEnvConfig(&cfg)
	if err := ApplyEnvOverrides(&cfg, p.lookup); err != nil {
		return nil, err
	}

	result := Validate(cfg)
	for _, key := range undecodedKeys(meta) {
		result.AddWarning(key, "unknown configuration key")
	}
	if err := result.Error(); err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, Path: path, Warnings: result.Warnings}, nil
}

// Load parses the file at path with a default Parser.
func Load(path string) (*Loaded, error) {
	return NewParser().ParseFile(path)
}

// DefaultPath returns the per-user configuration file location, such as
// ~/.config/sysinfo/sysinfo.toml, and whether it exists.
func DefaultPath() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, defaultConfigSubdir, defaultConfigName)
	if _, err := os.Stat(path); err != nil {
		return path, false
	}
	return path, true
}

// loadDotEnv loads every existing file in order. godotenv never overrides
// variables that are already set, so earlier files win.
func loadDotEnv(paths ...string) error {
	seen := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err == nil {
			if seen[abs] {
				continue
			}
			seen[abs] = true
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

func undecodedKeys(meta toml.MetaData) []string {
	var keys []string
	for _, key := range meta.Undecoded() {
		keys = append(keys, strings.Join(key, "."))
	}
	sort.Strings(keys)
	return keys
}
