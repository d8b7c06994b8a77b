package platform

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// makeTree creates files (path -> content) and directories (path ending in
// "/") under a fresh temp root.
func makeTree(t *testing.T, entries map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range entries {
		full := filepath.Join(root, path)
		if strings.HasSuffix(path, "/") {
			if err := os.MkdirAll(full, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func noCommands(name string, _ ...string) ([]byte, error) {
	return nil, &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func equalCounts(a, b []PackageCount) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCountPackages(t *testing.T) {
	absent := func() (uint64, error) { return 0, fs.ErrNotExist }
	broken := func() (uint64, error) { return 0, fs.ErrPermission }
	fixed := func(n uint64) func() (uint64, error) {
		return func() (uint64, error) { return n, nil }
	}

	tests := []struct {
		name     string
		managers []packageManager
		want     []PackageCount
		wantKind Kind
	}{
		{
			name:     "none present",
			managers: []packageManager{{"dpkg", absent}, {"cargo", absent}},
			wantKind: KindUnavailable,
		},
		{
			name:     "present managers in order",
			managers: []packageManager{{"dpkg", fixed(10)}, {"rpm", absent}, {"cargo", fixed(3)}},
			want:     []PackageCount{{"dpkg", 10}, {"cargo", 3}},
		},
		{
			name:     "failure hidden by another count",
			managers: []packageManager{{"dpkg", broken}, {"cargo", fixed(3)}},
			want:     []PackageCount{{"cargo", 3}},
		},
		{
			name:     "only failures",
			managers: []packageManager{{"dpkg", broken}, {"cargo", absent}},
			wantKind: KindProbeFailure,
		},
		{
			name:     "empty database still counts",
			managers: []packageManager{{"pacman", fixed(0)}},
			want:     []PackageCount{{"pacman", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := countPackages(tt.managers)
			if tt.wantKind != 0 {
				if kind, _ := KindOf(err); kind != tt.wantKind {
					t.Errorf("countPackages() error = %v, want kind %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("countPackages() error = %v", err)
			}
			if !equalCounts(got, tt.want) {
				t.Errorf("countPackages() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCountPackages_FailureCode(t *testing.T) {
	_, err := countPackages([]packageManager{{"dpkg", func() (uint64, error) { return 0, fs.ErrPermission }}})
	var fe *FactError
	if !errors.As(err, &fe) || fe.Fact != FactPackages || fe.Code != CodePermissionDenied {
		t.Errorf("countPackages() error = %#v, want permission denied on %s", err, FactPackages)
	}
}

func TestParseDpkgStatus(t *testing.T) {
	status := `Package: bash
Status: install ok installed
Version: 5.2.21-2

Package: vim
Status: deinstall ok config-files

Package: curl
Status: install ok installed

Package: broken
Status: install reinstreq half-installed
`
	got, err := parseDpkgStatus(strings.NewReader(status))
	if err != nil {
		t.Fatalf("parseDpkgStatus() error = %v", err)
	}
	if got != 2 {
		t.Errorf("parseDpkgStatus() = %d, want 2", got)
	}
}

func TestParseApkInstalled(t *testing.T) {
	db := "C:Q1abc=\nP:musl\nV:1.2.4-r2\n\nC:Q1def=\nP:busybox\nV:1.36.1-r5\n"
	got, err := parseApkInstalled(strings.NewReader(db))
	if err != nil {
		t.Fatalf("parseApkInstalled() error = %v", err)
	}
	if got != 2 {
		t.Errorf("parseApkInstalled() = %d, want 2", got)
	}
}

const xbpsPkgdbFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>base-files</key>
	<dict>
		<key>pkgver</key>
		<string>base-files-0.143_1</string>
		<key>state</key>
		<string>installed</string>
	</dict>
	<key>bash</key>
	<dict>
		<key>state</key>
		<string>installed</string>
	</dict>
	<key>firefox</key>
	<dict>
		<key>state</key>
		<string>half-removed</string>
	</dict>
	<key>_XBPS_ALTERNATIVES_</key>
	<dict>
		<key>installed</key>
		<string>state</string>
	</dict>
</dict>
</plist>
`

func TestParseXbpsPkgdb(t *testing.T) {
	got, err := parseXbpsPkgdb(strings.NewReader(xbpsPkgdbFixture))
	if err != nil {
		t.Fatalf("parseXbpsPkgdb() error = %v", err)
	}
	if got != 2 {
		t.Errorf("parseXbpsPkgdb() = %d, want 2", got)
	}

	if _, err := parseXbpsPkgdb(strings.NewReader("<plist><dict>")); err == nil {
		t.Error("parseXbpsPkgdb(truncated) error = nil, want error")
	}
}

func TestLinuxPackageManagers(t *testing.T) {
	root := makeTree(t, map[string]string{
		"lib/apk/db/installed":                 "P:musl\nP:busybox\nP:alpine-baselayout\n",
		"var/lib/pacman/local/bash-5.2-1/":     "",
		"var/lib/pacman/local/glibc-2.39-1/":   "",
		"var/lib/pacman/local/ALPM_DB_VERSION": "9\n",
		"var/lib/rpm/":                         "",
		"var/db/xbps/pkgdb-0.38.plist":         xbpsPkgdbFixture,
		"home/user/.cargo/bin/ripgrep":         "",
		"home/user/.cargo/bin/bat":             "",
	})
	env := envMap(map[string]string{"HOME": filepath.Join(root, "home/user")})

	var ran []string
	run := func(name string, args ...string) ([]byte, error) {
		ran = append(ran, name)
		if name == "rpm" {
			return []byte("bash-5.2.26-3.fc40.x86_64\nglibc-2.39-6.fc40.x86_64\n\n"), nil
		}
		return noCommands(name, args...)
	}

	got, err := countPackages(linuxPackageManagers(root, env, run))
	if err != nil {
		t.Fatalf("countPackages() error = %v", err)
	}
	want := []PackageCount{
		{"apk", 3}, {"pacman", 2}, {"rpm", 2}, {"xbps", 2}, {"cargo", 2},
	}
	if !equalCounts(got, want) {
		t.Errorf("countPackages() = %+v, want %+v", got, want)
	}
	for _, name := range ran {
		if name == "nix-store" {
			t.Error("nix-store ran without /run/current-system/sw")
		}
	}
}

func TestLinuxPackageManagers_CargoHome(t *testing.T) {
	root := makeTree(t, map[string]string{
		"opt/cargo/bin/just": "",
	})
	env := envMap(map[string]string{"CARGO_HOME": filepath.Join(root, "opt/cargo"), "HOME": "/nonexistent"})

	got, err := countPackages(linuxPackageManagers(root, env, noCommands))
	if err != nil {
		t.Fatalf("countPackages() error = %v", err)
	}
	if want := []PackageCount{{"cargo", 1}}; !equalCounts(got, want) {
		t.Errorf("countPackages() = %+v, want %+v", got, want)
	}
}

func TestDarwinPackageManagers(t *testing.T) {
	root := makeTree(t, map[string]string{
		"opt/homebrew/Cellar/git/":              "",
		"opt/homebrew/Cellar/wget/":             "",
		"usr/local/Cellar/python@3.12/":         "",
		"opt/local/var/macports/software/zlib/": "",
	})
	env := envMap(nil)

	got, err := countPackages(darwinPackageManagers(root, env))
	if err != nil {
		t.Fatalf("countPackages() error = %v", err)
	}
	if want := []PackageCount{{"homebrew", 3}, {"macports", 1}}; !equalCounts(got, want) {
		t.Errorf("countPackages() = %+v, want %+v", got, want)
	}
}

func TestBSDPackageManagers(t *testing.T) {
	tests := []struct {
		goos  string
		entry string
		want  []PackageCount
	}{
		{"freebsd", "var/db/pkg/local.sqlite", []PackageCount{{"pkg", 3}}},
		{"dragonfly", "var/db/pkg/local.sqlite", []PackageCount{{"pkg", 3}}},
		{"netbsd", "usr/pkg/pkgdb/bash-5.2/", []PackageCount{{"pkgsrc", 1}}},
		{"openbsd", "var/db/pkg/curl-8.7.1/", []PackageCount{{"pkg_add", 1}}},
	}
	run := func(name string, args ...string) ([]byte, error) {
		if name == "pkg" && strings.Join(args, " ") == "info -q" {
			return []byte("bash-5.2.26\ncurl-8.7.1\nvim-9.1.0\n"), nil
		}
		return noCommands(name, args...)
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			root := makeTree(t, map[string]string{tt.entry: ""})
			got, err := countPackages(bsdPackageManagers(tt.goos, root, envMap(nil), run))
			if err != nil {
				t.Fatalf("countPackages() error = %v", err)
			}
			if !equalCounts(got, tt.want) {
				t.Errorf("countPackages() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWindowsDirPackageManagers(t *testing.T) {
	root := makeTree(t, map[string]string{
		"choco/lib/git/":         "",
		"choco/lib/7zip/":        "",
		"profile/scoop/apps/jq/": "",
		"profile/.cargo/bin/fd":  "",
		"profile/.cargo/bin/bat": "",
	})
	env := envMap(map[string]string{
		"ChocolateyInstall": filepath.Join(root, "choco"),
		"USERPROFILE":       filepath.Join(root, "profile"),
	})

	got, err := countPackages(windowsDirPackageManagers(env))
	if err != nil {
		t.Fatalf("countPackages() error = %v", err)
	}
	if want := []PackageCount{{"chocolatey", 2}, {"scoop", 1}, {"cargo", 2}}; !equalCounts(got, want) {
		t.Errorf("countPackages() = %+v, want %+v", got, want)
	}
}

func TestTotalPackages(t *testing.T) {
	if got := TotalPackages([]PackageCount{{"dpkg", 1890}, {"cargo", 12}}); got != 1902 {
		t.Errorf("TotalPackages() = %d, want 1902", got)
	}
	if got := TotalPackages(nil); got != 0 {
		t.Errorf("TotalPackages(nil) = %d, want 0", got)
	}
}
