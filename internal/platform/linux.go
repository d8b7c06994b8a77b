//go:build linux
// +build linux

package platform

import (
	"os"
	"strings"
)

// linuxProbe implements Probe by reading procfs and sysfs and calling into
// the kernel. All filesystem locations are fields so tests can point them
// at fixture trees.
type linuxProbe struct {
	osReleasePaths  []string
	dmiPath         string
	procCPUInfoPath string
	cpuSysfsPath    string
	procMemInfoPath string
	procMountsPath  string
	sysBlockPath    string
	procRoutePath   string
	pciDevicesPath  string
	pciIDsPaths     []string
	powerSupplyPath string
	procPath        string
	rootPath        string

	getenv func(string) string
	statfs func(path string) (DiskUsage, error)
	isDir  func(path string) bool
	uname  func() (sysname, release string, err error)
	run    commandFunc
}

func newLinuxProbe() *linuxProbe {
	return &linuxProbe{
		osReleasePaths:  []string{"/etc/os-release", "/usr/lib/os-release"},
		dmiPath:         "/sys/class/dmi/id",
		procCPUInfoPath: "/proc/cpuinfo",
		cpuSysfsPath:    "/sys/devices/system/cpu",
		procMemInfoPath: "/proc/meminfo",
		procMountsPath:  "/proc/mounts",
		sysBlockPath:    "/sys/block",
		procRoutePath:   "/proc/net/route",
		pciDevicesPath:  "/sys/bus/pci/devices",
		pciIDsPaths:     pciIDsPaths,
		powerSupplyPath: "/sys/class/power_supply",
		procPath:        "/proc",
		rootPath:        "/",
		getenv:          os.Getenv,
		statfs:          statfsUsage,
		isDir:           isDirectory,
		uname:           unameRelease,
		run:             runLocalCommand,
	}
}

func (p *linuxProbe) Name() string {
	return "linux"
}

func (p *linuxProbe) Close() error {
	return nil
}

// readTrimmed reads a small sysfs/procfs attribute.
func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *linuxProbe) Packages() ([]PackageCount, error) {
	return countPackages(linuxPackageManagers(p.rootPath, p.getenv, p.run))
}
