package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-sysinfo/pkg/sysinfo"
)

const sampleConfig = `
[display]
facts = ["os", "host", "cpu_model", "uptime"]
box = true

[logging]
level = "debug"
format = "json"

[lua]
script = "${SYSINFO_TEST_DIR:-/etc}/report.lua"
cpu_limit = 1000

[remote]
host = "pi.local"
port = 2222
user = "pi"
timeout = "3s"
`

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sysinfo.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := NewParser().WithLookup(mapLookup(nil)).ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	cfg := loaded.Config

	if want := []string{"os", "host", "cpu_model", "uptime"}; !reflect.DeepEqual(cfg.Display.Facts, want) {
		t.Errorf("Display.Facts = %v, want %v", cfg.Display.Facts, want)
	}
	if !cfg.Display.Box || cfg.Display.JSON {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Lua.Script != "/etc/report.lua" {
		t.Errorf("Lua.Script = %q, want /etc/report.lua", cfg.Lua.Script)
	}
	if cfg.Lua.CPULimit != 1000 {
		t.Errorf("Lua.CPULimit = %d, want 1000", cfg.Lua.CPULimit)
	}
	if cfg.Lua.MemoryLimit != DefaultLuaMemory {
		t.Errorf("Lua.MemoryLimit = %d, want default %d", cfg.Lua.MemoryLimit, DefaultLuaMemory)
	}
	if cfg.Remote.Host != "pi.local" || cfg.Remote.Port != 2222 || cfg.Remote.User != "pi" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	if loaded.Path != path {
		t.Errorf("Path = %q, want %q", loaded.Path, path)
	}
}

func TestParser_EmptyPath(t *testing.T) {
	loaded, err := NewParser().WithLookup(mapLookup(map[string]string{"SYSINFO_JSON": "1"})).ParseFile("")
	if err != nil {
		t.Fatalf("ParseFile(\"\") error = %v", err)
	}
	if !loaded.Config.Display.JSON {
		t.Error("override not applied to default config")
	}
	if loaded.Config.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", loaded.Config.Logging.Level, DefaultLogLevel)
	}
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser().WithLookup(mapLookup(nil)).ParseFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("ParseFile() error = nil, want error")
	}
}

func TestParser_Parse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   bool
		wantWarns int
	}{
		{name: "empty", input: ""},
		{name: "syntax error", input: "[display\nfacts = 1", wantErr: true},
		{name: "wrong type", input: "[remote]\nport = \"ssh\"", wantErr: true},
		{name: "unknown fact", input: "[display]\nfacts = [\"weather\"]", wantErr: true},
		{name: "unknown key", input: "[display]\ncolour = \"red\"", wantWarns: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loaded, err := NewParser().WithLookup(mapLookup(nil)).Parse(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(loaded.Warnings) != tt.wantWarns {
				t.Errorf("Parse() warnings = %v, want %d", loaded.Warnings, tt.wantWarns)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SYSINFO_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SYSINFO_TEST_DOTENV", "")
	os.Unsetenv("SYSINFO_TEST_DOTENV")

	if err := loadDotEnv(envPath, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("SYSINFO_TEST_DOTENV"); got != "from-file" {
		t.Errorf("SYSINFO_TEST_DOTENV = %q, want from-file", got)
	}
}

func TestRemoteConfig_ToRemote(t *testing.T) {
	env := map[string]string{"PI_PASSWORD": "hunter2"}
	getenv := func(k string) string { return env[k] }

	disabled, err := RemoteConfig{}.ToRemote(getenv)
	if err != nil || disabled != nil {
		t.Errorf("ToRemote() without host = %v, %v; want nil, nil", disabled, err)
	}

	withPassword, err := RemoteConfig{Host: "pi", PasswordEnv: "PI_PASSWORD", Timeout: "2s"}.ToRemote(getenv)
	if err != nil {
		t.Fatalf("ToRemote() error = %v", err)
	}
	if auth, ok := withPassword.AuthMethod.(sysinfo.PasswordAuth); !ok || auth.Password != "hunter2" {
		t.Errorf("AuthMethod = %#v, want PasswordAuth", withPassword.AuthMethod)
	}
	if withPassword.CommandTimeout != 2*time.Second {
		t.Errorf("CommandTimeout = %v, want 2s", withPassword.CommandTimeout)
	}

	withKey, err := RemoteConfig{Host: "pi", IdentityFile: "/keys/id", Insecure: true}.ToRemote(getenv)
	if err != nil {
		t.Fatalf("ToRemote() error = %v", err)
	}
	if _, ok := withKey.AuthMethod.(sysinfo.KeyAuth); !ok {
		t.Errorf("AuthMethod = %#v, want KeyAuth", withKey.AuthMethod)
	}
	if !withKey.InsecureIgnoreHostKey {
		t.Error("InsecureIgnoreHostKey = false, want true")
	}

	if _, err := (RemoteConfig{Host: "pi", PasswordEnv: "MISSING"}).ToRemote(getenv); err == nil {
		t.Error("ToRemote() with unset password variable error = nil, want error")
	}
}
