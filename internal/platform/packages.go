package platform

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// packageManager counts the packages installed through one manager. count
// returns an error matching fs.ErrNotExist or exec.ErrNotFound when the
// manager is not present on the system.
type packageManager struct {
	name  string
	count func() (uint64, error)
}

// countPackages queries every manager in order and keeps the ones present.
// A manager that is present but cannot be read only fails the fact when no
// other manager produced a count.
func countPackages(managers []packageManager) ([]PackageCount, error) {
	var counts []PackageCount
	var failures []error
	for _, m := range managers {
		n, err := m.count()
		switch {
		case err == nil:
			counts = append(counts, PackageCount{Manager: m.name, Count: n})
		case managerAbsent(err):
		default:
			failures = append(failures, fmt.Errorf("%s: %w", m.name, err))
		}
	}
	if len(counts) > 0 {
		return counts, nil
	}
	if len(failures) > 0 {
		return nil, classifyIOError(FactPackages, errors.Join(failures...))
	}
	return nil, unavailable(FactPackages, "no supported package manager found")
}

func managerAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound)
}

// countSubdirs counts the directories directly under dir. Package databases
// such as pacman's local/ and Homebrew's Cellar/ hold one per package.
func countSubdirs(dir string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, e := range entries {
		if e.IsDir() {
			n++
		}
	}
	return n, nil
}

// countFiles counts the non-directory entries directly under dir.
func countFiles(dir string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var n uint64
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n, nil
}

// countFileWith opens path and counts it with parse.
func countFileWith(path string, parse func(io.Reader) (uint64, error)) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parse(f)
}

// countCommandLines counts the non-empty output lines of a listing command.
// The command only runs when marker exists, so a stray binary on a system
// managed by something else is not counted.
func countCommandLines(run commandFunc, marker, name string, args ...string) (uint64, error) {
	if _, err := os.Stat(marker); err != nil {
		return 0, err
	}
	out, err := run(name, args...)
	if err != nil {
		return 0, err
	}
	return countLines(string(out)), nil
}

func countLines(s string) uint64 {
	var n uint64
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// parseDpkgStatus counts the packages in /var/lib/dpkg/status whose state
// is installed. Removed packages that keep config files are skipped.
func parseDpkgStatus(r io.Reader) (uint64, error) {
	var n uint64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		status, ok := strings.CutPrefix(scanner.Text(), "Status:")
		if !ok {
			continue
		}
		fields := strings.Fields(status)
		if len(fields) == 3 && fields[2] == "installed" {
			n++
		}
	}
	return n, scanner.Err()
}

// parseApkInstalled counts the package records ("P:" lines) of Alpine's
// /lib/apk/db/installed.
func parseApkInstalled(r io.Reader) (uint64, error) {
	var n uint64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "P:") {
			n++
		}
	}
	return n, scanner.Err()
}

// parseXbpsPkgdb counts the packages of an XBPS pkgdb plist whose "state"
// key is "installed".
func parseXbpsPkgdb(r io.Reader) (uint64, error) {
	dec := xml.NewDecoder(r)
	var (
		n       uint64
		element string
		lastKey string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("parsing pkgdb: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			element = t.Name.Local
		case xml.EndElement:
			element = ""
		case xml.CharData:
			value := strings.TrimSpace(string(t))
			switch element {
			case "key":
				lastKey = value
			case "string":
				if lastKey == "state" && value == "installed" {
					n++
				}
				lastKey = ""
			}
		}
	}
}

// xbpsPkgdb returns the pkgdb-*.plist file in dir.
func xbpsPkgdb(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "pkgdb-*.plist"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no pkgdb in %s: %w", dir, fs.ErrNotExist)
	}
	return matches[len(matches)-1], nil
}

// cargoManager counts the binaries installed with `cargo install`.
func cargoManager(getenv func(string) string) packageManager {
	return packageManager{name: "cargo", count: func() (uint64, error) {
		dir := ""
		if home := getenv("CARGO_HOME"); home != "" {
			dir = filepath.Join(home, "bin")
		} else if home := firstNonEmpty(getenv("HOME"), getenv("USERPROFILE")); home != "" {
			dir = filepath.Join(home, ".cargo", "bin")
		}
		if dir == "" {
			return 0, fmt.Errorf("no home directory: %w", fs.ErrNotExist)
		}
		return countFiles(dir)
	}}
}

// linuxPackageManagers lists the Linux package databases under root.
func linuxPackageManagers(root string, getenv func(string) string, run commandFunc) []packageManager {
	path := func(p string) string { return filepath.Join(root, p) }
	return []packageManager{
		{name: "apk", count: func() (uint64, error) {
			return countFileWith(path("lib/apk/db/installed"), parseApkInstalled)
		}},
		{name: "dpkg", count: func() (uint64, error) {
			return countFileWith(path("var/lib/dpkg/status"), parseDpkgStatus)
		}},
		{name: "pacman", count: func() (uint64, error) {
			return countSubdirs(path("var/lib/pacman/local"))
		}},
		{name: "rpm", count: func() (uint64, error) {
			return countCommandLines(run, path("var/lib/rpm"), "rpm", "-qa")
		}},
		{name: "xbps", count: func() (uint64, error) {
			db, err := xbpsPkgdb(path("var/db/xbps"))
			if err != nil {
				return 0, err
			}
			return countFileWith(db, parseXbpsPkgdb)
		}},
		{name: "nix", count: func() (uint64, error) {
			return countCommandLines(run, path("run/current-system/sw"),
				"nix-store", "--query", "--requisites", "/run/current-system/sw")
		}},
		cargoManager(getenv),
	}
}

// darwinPackageManagers lists Homebrew's Cellars and MacPorts' software
// tree under root.
func darwinPackageManagers(root string, getenv func(string) string) []packageManager {
	path := func(p string) string { return filepath.Join(root, p) }
	return []packageManager{
		{name: "homebrew", count: func() (uint64, error) {
			var total uint64
			found := false
			for _, cellar := range []string{"opt/homebrew/Cellar", "usr/local/Cellar"} {
				n, err := countSubdirs(path(cellar))
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				if err != nil {
					return 0, err
				}
				total += n
				found = true
			}
			if !found {
				return 0, fmt.Errorf("no Cellar: %w", fs.ErrNotExist)
			}
			return total, nil
		}},
		{name: "macports", count: func() (uint64, error) {
			return countSubdirs(path("opt/local/var/macports/software"))
		}},
		cargoManager(getenv),
	}
}

// bsdPackageManagers lists the native package database for goos.
func bsdPackageManagers(goos, root string, getenv func(string) string, run commandFunc) []packageManager {
	path := func(p string) string { return filepath.Join(root, p) }
	var native packageManager
	switch goos {
	case "freebsd", "dragonfly":
		native = packageManager{name: "pkg", count: func() (uint64, error) {
			return countCommandLines(run, path("var/db/pkg/local.sqlite"), "pkg", "info", "-q")
		}}
	case "netbsd":
		native = packageManager{name: "pkgsrc", count: func() (uint64, error) {
			return countSubdirs(path("usr/pkg/pkgdb"))
		}}
	default:
		native = packageManager{name: "pkg_add", count: func() (uint64, error) {
			return countSubdirs(path("var/db/pkg"))
		}}
	}
	return []packageManager{native, cargoManager(getenv)}
}

// windowsDirPackageManagers lists the directory-based Windows managers.
func windowsDirPackageManagers(getenv func(string) string) []packageManager {
	return []packageManager{
		{name: "chocolatey", count: func() (uint64, error) {
			dir := firstNonEmpty(getenv("ChocolateyInstall"), `C:\ProgramData\chocolatey`)
			return countSubdirs(filepath.Join(dir, "lib"))
		}},
		{name: "scoop", count: func() (uint64, error) {
			dir := getenv("SCOOP")
			if dir == "" {
				profile := getenv("USERPROFILE")
				if profile == "" {
					return 0, fmt.Errorf("no user profile: %w", fs.ErrNotExist)
				}
				dir = filepath.Join(profile, "scoop")
			}
			return countSubdirs(filepath.Join(dir, "apps"))
		}},
		cargoManager(getenv),
	}
}
